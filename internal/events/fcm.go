package events

import (
	"context"
	"sync"
	"time"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// TokenSource finds the device tokens that should hear about a clinic.
type TokenSource interface {
	DeviceTokens(ctx context.Context, clinicID *uint64) ([]string, error)
}

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMPublisher sends a data-only push so the mobile app refetches.
type FCMPublisher struct {
	client  messageSender
	tokens  TokenSource
	log     zerolog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewFCMPublisher(ctx context.Context, credentialsFile string, tokens TokenSource, log zerolog.Logger) (*FCMPublisher, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return newFCMPublisher(client, tokens, log), nil
}

func newFCMPublisher(client messageSender, tokens TokenSource, log zerolog.Logger) *FCMPublisher {
	return &FCMPublisher{
		client:  client,
		tokens:  tokens,
		log:     log.With().Str("component", "fcm").Logger(),
		timeout: 10 * time.Second,
	}
}

// Publish returns immediately; delivery happens in the background.
func (p *FCMPublisher) Publish(_ context.Context, e Event) error {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		p.deliver(ctx, e)
	}()
	return nil
}

func (p *FCMPublisher) deliver(ctx context.Context, e Event) {
	tokens, err := p.tokens.DeviceTokens(ctx, e.ClinicID)
	if err != nil {
		p.log.Warn().Err(err).Msg("load device tokens")
		return
	}
	sent := 0
	for _, token := range tokens {
		_, err := p.client.Send(ctx, &messaging.Message{
			Token: token,
			Data:  map[string]string{"type": e.Type},
		})
		if err != nil {
			p.log.Warn().Err(err).Msg("push not delivered")
			continue
		}
		sent++
	}
	p.log.Debug().Int("sent", sent).Int("tokens", len(tokens)).Msg("push fan-out done")
}

// Wait blocks until in-flight deliveries finish.
func (p *FCMPublisher) Wait() {
	p.wg.Wait()
}
