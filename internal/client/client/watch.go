package client

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dmitrijs2005/postplanner/internal/api"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Subscribe opens the server change stream of scope. Events are delivered
// until ctx is done, Close is called or the stream ends; the channel is
// closed afterwards. A stream rejected for an expired access token is
// reopened once after a refresh.
func (s *GRPCClient) Subscribe(ctx context.Context, scope schedule.Scope) (schedule.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	token, _ := s.Tokens()
	stream, err := s.client.Watch(ctx, &api.WatchRequest{WorkspaceID: scope.WorkspaceID})
	if err != nil {
		cancel()
		return nil, mapError(err)
	}

	sub := &watchSubscription{
		events: make(chan schedule.ChangeEvent),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.pump(ctx, scope, sub, stream, token)
	return sub, nil
}

func (s *GRPCClient) pump(ctx context.Context, scope schedule.Scope, sub *watchSubscription, stream api.SchedulerWatchClient, token string) {
	defer close(sub.done)
	defer close(sub.events)

	retried := false
	for {
		ev, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
				return
			}
			if isTokenExpired(err) && !retried {
				retried = true
				if _, rerr := s.refresh(ctx, token); rerr != nil {
					s.logger.Warn(ctx, "watch token refresh failed", "error", rerr)
					return
				}
				token, _ = s.Tokens()
				stream, err = s.client.Watch(ctx, &api.WatchRequest{WorkspaceID: scope.WorkspaceID})
				if err != nil {
					s.logger.Warn(ctx, "watch reopen failed", "error", err)
					return
				}
				continue
			}
			s.logger.Warn(ctx, "watch stream ended", "error", mapError(err))
			return
		}

		if !scope.Includes(*ev) {
			continue
		}
		select {
		case sub.events <- *ev:
		case <-ctx.Done():
			return
		}
	}
}

type watchSubscription struct {
	events chan schedule.ChangeEvent
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (w *watchSubscription) Events() <-chan schedule.ChangeEvent {
	return w.events
}

// Close cancels the stream and waits for the receive loop to exit.
func (w *watchSubscription) Close() error {
	w.once.Do(w.cancel)
	<-w.done
	return nil
}
