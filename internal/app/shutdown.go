package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	// Cancel context to signal all components
	a.cancel()

	// Shutdown components in dependency order
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server
	err := a.shutdownHTTPServer(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// Close odds stream
	err = a.shutdownOddsStream()
	if err != nil {
		a.logger.Error("odds-stream-close-error", zap.Error(err))
	}

	// Close quote book
	err = a.shutdownQuoteBook()
	if err != nil {
		a.logger.Error("quote-book-close-error", zap.Error(err))
	}

	// Close storage
	err = a.shutdownStorage()
	if err != nil {
		a.logger.Error("storage-close-error", zap.Error(err))
	}

	// Wait for all goroutines
	a.wg.Wait()

	a.logger.Info("application-shutdown-complete")

	return nil
}

func (a *App) shutdownHTTPServer(ctx context.Context) error {
	return a.httpServer.Shutdown(ctx)
}

func (a *App) shutdownOddsStream() error {
	if a.oddsStream == nil {
		return nil
	}
	return a.oddsStream.Close()
}

func (a *App) shutdownQuoteBook() error {
	return a.quoteBook.Close()
}

func (a *App) shutdownStorage() error {
	return a.storage.Close()
}
