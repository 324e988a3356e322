package services

import (
	"time"

	"recipeapp/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Recipe event exchange and routing keys.
const (
	RecipeExchange           = "recipe"
	EventRecipeCreated       = "recipe.created"
	EventRecipeUpdated       = "recipe.updated"
	EventRecipeDeleted       = "recipe.deleted"
	EventRecipeImageUploaded = "recipe.image_uploaded"
)

// EventPublisher sends a message to an exchange. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// RecipeEvent is the body published for every recipe write.
type RecipeEvent struct {
	RecipeID uint      `json:"recipe_id"`
	UserID   uint      `json:"user_id"`
	Event    string    `json:"event"`
	At       time.Time `json:"at"`
}

// publish never fails the caller; broker errors are logged.
func publish(p EventPublisher, routingKey string, recipeID, userID uint) {
	if p == nil {
		return
	}
	body, err := json.Marshal(RecipeEvent{
		RecipeID: recipeID,
		UserID:   userID,
		Event:    routingKey,
		At:       time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to encode recipe event")
		return
	}
	if err := p.Publish(RecipeExchange, routingKey, body); err != nil {
		metrics.EventsPublished.WithLabelValues(routingKey, "error").Inc()
		log.Warn().Err(err).Str("routing_key", routingKey).Uint("recipe_id", recipeID).Msg("failed to publish recipe event")
		return
	}
	metrics.EventsPublished.WithLabelValues(routingKey, "ok").Inc()
}
