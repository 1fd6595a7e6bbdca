package broadcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fleetops-disposal-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisNotifier implements the notifier interface using Redis pub/sub.
// Notification and audit collaborators, plus subscribed operator consoles,
// receive domain events through per-entity channels. Event channels are
// owned by the subscriber; the notifier only holds references and never
// closes them.
type RedisNotifier struct {
	client          *redis.Client
	subscribers     map[string]chan outbound.Event // clientID -> local channel
	pubsubs         map[string]*redis.PubSub       // clientID -> pubsub instance
	clientsToEntity map[string]map[string]bool     // clientID -> entityID -> subscribed
	mu              sync.RWMutex
	ctx             context.Context
	cancel          context.CancelFunc
	logger          zerolog.Logger
}

type RedisNotifierParams struct {
	RedisClient *redis.Client
	Logger      zerolog.Logger
}

// NewNotifier creates a Redis-backed notifier
func NewNotifier(params RedisNotifierParams) *RedisNotifier {
	ctx, cancel := context.WithCancel(context.Background())

	notifier := &RedisNotifier{
		client:          params.RedisClient,
		subscribers:     make(map[string]chan outbound.Event),
		pubsubs:         make(map[string]*redis.PubSub),
		clientsToEntity: make(map[string]map[string]bool),
		ctx:             ctx,
		cancel:          cancel,
		logger:          params.Logger.With().Str("component", "redis_notifier").Logger(),
	}

	return notifier
}

func channelFor(entityID uuid.UUID) string {
	return fmt.Sprintf("disposal:events:%s", entityID.String())
}

// Subscribe subscribes a client to events for a specific entity
func (r *RedisNotifier) Subscribe(ctx context.Context, entityID uuid.UUID, clientID string, eventChan chan outbound.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clientsToEntity[clientID] != nil && r.clientsToEntity[clientID][entityID.String()] {
		r.logger.Info().
			Str("client_id", clientID).
			Str("entity_id", entityID.String()).
			Msg("Client already subscribed")
		return nil
	}

	if r.subscribers[clientID] == nil {
		r.subscribers[clientID] = eventChan
	}

	if r.clientsToEntity[clientID] == nil {
		r.clientsToEntity[clientID] = make(map[string]bool)
	}
	r.clientsToEntity[clientID][entityID.String()] = true

	var pubsub *redis.PubSub
	if existingPubsub, exists := r.pubsubs[clientID]; exists {
		pubsub = existingPubsub
	} else {
		pubsub = r.client.Subscribe(ctx)
		r.pubsubs[clientID] = pubsub

		go r.listenForRedisMessages(pubsub, clientID, eventChan)
	}

	if err := pubsub.Subscribe(ctx, channelFor(entityID)); err != nil {
		r.logger.Error().Err(err).Str("client_id", clientID).Str("entity_id", entityID.String()).Msg("Failed to subscribe to Redis channel")
		return err
	}

	r.logger.Info().
		Str("client_id", clientID).
		Str("entity_id", entityID.String()).
		Msg("Client subscribed via Redis")
	return nil
}

// Unsubscribe unsubscribes a client from events for a specific entity
func (r *RedisNotifier) Unsubscribe(ctx context.Context, entityID uuid.UUID, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clientEntities, exists := r.clientsToEntity[clientID]; exists {
		delete(clientEntities, entityID.String())

		if len(clientEntities) == 0 {
			delete(r.clientsToEntity, clientID)

			// Drop the reference only; the subscriber owns the channel
			// and may keep using it.
			delete(r.subscribers, clientID)

			if pubsub, exists := r.pubsubs[clientID]; exists {
				if err := pubsub.Close(); err != nil {
					r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub for client")
				}
				delete(r.pubsubs, clientID)
			}
		} else {
			if pubsub, exists := r.pubsubs[clientID]; exists {
				if err := pubsub.Unsubscribe(ctx, channelFor(entityID)); err != nil {
					r.logger.Error().Err(err).Str("client_id", clientID).Str("entity_id", entityID.String()).Msg("Error unsubscribing from Redis channel")
				}
			}
		}
	}

	r.logger.Info().
		Str("client_id", clientID).
		Str("entity_id", entityID.String()).
		Msg("Client unsubscribed")
	return nil
}

// UnsubscribeAll drops every subscription a client holds. Called when the
// client disconnects; the client's event channel is left untouched.
func (r *RedisNotifier) UnsubscribeAll(ctx context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clientsToEntity, clientID)
	delete(r.subscribers, clientID)

	if pubsub, exists := r.pubsubs[clientID]; exists {
		if err := pubsub.Close(); err != nil {
			r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub for client")
		}
		delete(r.pubsubs, clientID)
	}

	r.logger.Info().Str("client_id", clientID).Msg("Client subscriptions dropped")
	return nil
}

// Publish publishes an event to all subscribers of an entity via Redis
func (r *RedisNotifier) Publish(ctx context.Context, entityID uuid.UUID, event outbound.Event) error {
	channelName := channelFor(entityID)

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	result := r.client.Publish(ctx, channelName, eventJSON)
	if err := result.Err(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to publish to Redis")
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	r.logger.Info().
		Str("event_type", string(event.Type)).
		Str("entity_id", entityID.String()).
		Int64("subscriber_count", result.Val()).
		Str("summary", event.Summary).
		Msg("Published event")

	return nil
}

// IsSubscribed checks if a client is subscribed to an entity
func (r *RedisNotifier) IsSubscribed(ctx context.Context, entityID uuid.UUID, clientID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clientEntities, exists := r.clientsToEntity[clientID]
	if !exists {
		return false
	}

	return clientEntities[entityID.String()]
}

// listenForRedisMessages forwards Redis messages to the local channel
func (r *RedisNotifier) listenForRedisMessages(pubsub *redis.PubSub, clientID string, localChan chan outbound.Event) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error().Interface("panic", err).Str("client_id", clientID).Msg("Redis message listener panic for client")
		}
	}()

	ch := pubsub.Channel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				r.logger.Info().Str("client_id", clientID).Msg("Redis channel closed for client")
				return
			}

			var event outbound.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Error().Err(err).Str("client_id", clientID).Msg("Failed to unmarshal Redis message for client")
				continue
			}

			select {
			case localChan <- event:
			default:
				r.logger.Warn().Str("client_id", clientID).Msg("Local channel full for client, dropping event")
			}

		case <-r.ctx.Done():
			r.logger.Info().Str("client_id", clientID).Msg("Notifier context cancelled for client")
			return
		}
	}
}

// Close shuts down all subscriptions and the Redis client. Subscriber
// channels are left open for their owners to dispose of.
func (r *RedisNotifier) Close() error {
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.subscribers = make(map[string]chan outbound.Event)
	r.clientsToEntity = make(map[string]map[string]bool)

	for clientID, pubsub := range r.pubsubs {
		if err := pubsub.Close(); err != nil {
			r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub for client")
		}
		delete(r.pubsubs, clientID)
	}

	return r.client.Close()
}
