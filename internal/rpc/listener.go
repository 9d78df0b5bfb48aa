package rpc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds the graceful drain of in-flight requests.
const ShutdownTimeout = 10 * time.Second

// Handler mounts the JSON-RPC endpoint at / and the WebSocket endpoint at
// /ws.
func Handler(rpc *Server, ws *WebSocketServer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", rpc)
	mux.Handle("/ws", ws)
	return mux
}

// Serve runs handler on every listener until ctx is cancelled or one of
// them fails, then shuts all of them down.
func Serve(ctx context.Context, handler http.Handler, listeners ...net.Listener) error {
	g, gCtx := errgroup.WithContext(ctx)

	servers := make([]*http.Server, 0, len(listeners))
	for _, ln := range listeners {
		srv := &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return gCtx },
		}
		servers = append(servers, srv)
		ln := ln
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		var firstErr error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})

	return g.Wait()
}
