package app

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("storage-mode", a.cfg.StorageMode),
		zap.String("log-level", a.cfg.LogLevel))

	// Start all components
	err := a.startComponents()
	if err != nil {
		return err
	}

	// Mark as ready
	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.String("feed-url", a.cfg.FeedBaseURL))

	// Wait for shutdown signal
	return a.waitForShutdown()
}

func (a *App) startComponents() error {
	// Start HTTP server
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)

	// Start quote book before any quote source
	err := a.quoteBook.Start(a.ctx)
	if err != nil {
		return fmt.Errorf("start quote book: %w", err)
	}
	a.healthChecker.SetComponentReady("quote-book", true)

	// Start odds stream
	err = a.startOddsStream()
	if err != nil {
		return fmt.Errorf("start odds stream: %w", err)
	}

	// Start feed service and quote forwarding
	a.wg.Add(1)
	go a.runFeedService()
	a.wg.Add(1)
	go a.forwardQuotes(a.feedService.QuotesChan())
	a.healthChecker.SetComponentReady("feed", true)

	// Start bankroll monitor
	if a.monitor != nil {
		a.wg.Add(1)
		go a.runBankrollMonitor()
	}

	// Start fixture subscription handler
	a.wg.Add(1)
	go a.handleNewFixtures()

	// Start scoring loops
	a.wg.Add(1)
	go a.handleQuoteUpdates()
	a.wg.Add(1)
	go a.rescoreLoop()

	return nil
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) runFeedService() {
	defer a.wg.Done()
	err := a.feedService.Run(a.ctx)
	if err != nil && !errors.Is(err, a.ctx.Err()) {
		a.logger.Error("feed-service-error", zap.Error(err))
	}
}

func (a *App) runBankrollMonitor() {
	defer a.wg.Done()
	a.monitor.Start(a.ctx)
}

func (a *App) startOddsStream() error {
	if a.oddsStream == nil {
		return nil
	}

	err := a.oddsStream.Start()
	if err != nil {
		return err
	}

	a.wg.Add(1)
	go a.forwardQuotes(a.oddsStream.QuoteChan())

	return nil
}

// forwardQuotes feeds one quote source into the book's merged input.
func (a *App) forwardQuotes(src <-chan *types.OddsQuote) {
	defer a.wg.Done()

	for {
		select {
		case <-a.ctx.Done():
			return
		case quote, ok := <-src:
			if !ok {
				return
			}

			select {
			case a.quoteMerge <- quote:
			case <-a.ctx.Done():
				return
			}
		}
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
