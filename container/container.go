/*
Package container provides a simple dependency injection container for
managing service dependencies.
*/
package container

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rzafh/portfolio-backend/cache"
	"github.com/rzafh/portfolio-backend/handlers"
)

// Container manages application dependencies
type Container struct {
	mu       sync.RWMutex
	services map[string]interface{}
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		services: make(map[string]interface{}),
	}
}

// Register registers a service with the container
func (c *Container) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// Get retrieves a service from the container
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	service, exists := c.services[name]
	if !exists {
		return nil, fmt.Errorf("service %s not found in container", name)
	}
	return service, nil
}

// MustGet retrieves a service from the container, panicking if not found
func (c *Container) MustGet(name string) interface{} {
	service, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return service
}

// GetLogger retrieves the logger service
func (c *Container) GetLogger() *logrus.Logger {
	return c.MustGet("logger").(*logrus.Logger)
}

// GetCacheManager retrieves the cache manager service
func (c *Container) GetCacheManager() *cache.CacheManager {
	return c.MustGet("cacheManager").(*cache.CacheManager)
}

// GetFetcher retrieves the feed fetcher service
func (c *Container) GetFetcher() handlers.FeedFetcher {
	return c.MustGet("fetcher").(handlers.FeedFetcher)
}

// GetNotifier retrieves the notification service
func (c *Container) GetNotifier() handlers.Notifier {
	return c.MustGet("notifier").(handlers.Notifier)
}

// GetMailer retrieves the contact mailer service, which may be nil when the
// contact relay is not configured
func (c *Container) GetMailer() handlers.Mailer {
	service, err := c.Get("mailer")
	if err != nil {
		return nil
	}
	if service == nil {
		return nil
	}
	return service.(handlers.Mailer)
}

// GetHandler retrieves the HTTP handler service
func (c *Container) GetHandler() *handlers.Handler {
	return c.MustGet("handler").(*handlers.Handler)
}

// InitializeServices initializes all services and registers them with the container
func (c *Container) InitializeServices(
	fetcher handlers.FeedFetcher,
	notifier handlers.Notifier,
	contactMailer handlers.Mailer,
	cacheManager *cache.CacheManager,
	logger *logrus.Logger,
	opts handlers.Options,
) error {
	if fetcher == nil {
		return fmt.Errorf("feed fetcher cannot be nil")
	}
	if notifier == nil {
		return fmt.Errorf("notifier cannot be nil")
	}
	if logger == nil {
		return fmt.Errorf("logger cannot be nil")
	}

	c.Register("logger", logger)
	c.Register("cacheManager", cacheManager)
	c.Register("fetcher", fetcher)
	c.Register("notifier", notifier)
	if contactMailer != nil {
		c.Register("mailer", contactMailer)
	}

	handler := handlers.NewHandler(fetcher, notifier, contactMailer, logger, opts)
	c.Register("handler", handler)

	logger.Info("All services initialized and registered with container")
	return nil
}

// Close gracefully shuts down all services held by the container
func (c *Container) Close() error {
	c.mu.RLock()
	handlerService, hasHandler := c.services["handler"]
	c.mu.RUnlock()

	if hasHandler {
		if handler, ok := handlerService.(*handlers.Handler); ok {
			handler.Stop()
		}
	}
	return nil
}
