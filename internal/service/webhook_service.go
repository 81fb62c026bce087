package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"vidlink/api/internal/config"
	"vidlink/api/internal/security"
)

// PayloadArchiver persists accepted webhook payloads for audit.
// storage.ObjectStore is the production implementation.
type PayloadArchiver interface {
	ArchivePayload(ctx context.Context, key string, payload []byte) error
}

var (
	ErrBadWebhookSignature = errors.New("webhook signature mismatch")
	ErrDuplicateWebhook    = errors.New("webhook event already processed")
)

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		ID        json.Number `json:"id"`
		Reference string      `json:"reference"`
	} `json:"data"`
}

// WebhookService verifies payment processor webhooks, deduplicates
// replays and archives accepted payloads. Plan changes driven by the
// events are handled elsewhere.
type WebhookService struct {
	cfg     config.PaymentsConfig
	cache   *redis.Client
	archive PayloadArchiver
	log     zerolog.Logger
}

func NewWebhookService(cfg config.PaymentsConfig, cache *redis.Client, archive PayloadArchiver, log zerolog.Logger) *WebhookService {
	return &WebhookService{
		cfg:     cfg,
		cache:   cache,
		archive: archive,
		log:     log,
	}
}

// Process validates the signature over the raw body and records the
// event. Replayed events fail with ErrDuplicateWebhook so the transport
// can acknowledge them without re-archiving.
func (s *WebhookService) Process(ctx context.Context, signature string, body []byte) error {
	if !security.VerifyWebhookSignature(s.cfg.WebhookSecret, body, signature) {
		return ErrBadWebhookSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	ref := event.Data.Reference
	if ref == "" {
		ref = event.Data.ID.String()
	}

	if ref != "" {
		key := fmt.Sprintf("webhook:%s:%s", event.Event, ref)
		set, err := s.cache.SetNX(ctx, key, "1", s.cfg.DedupTTL).Result()
		if err != nil {
			return fmt.Errorf("webhook dedup: %w", err)
		}
		if !set {
			return ErrDuplicateWebhook
		}
	}

	objectKey := fmt.Sprintf("%s/%s-%d.json", event.Event, ref, time.Now().UnixNano())
	if err := s.archive.ArchivePayload(ctx, objectKey, body); err != nil {
		return fmt.Errorf("archive webhook: %w", err)
	}

	s.log.Info().
		Str("event", event.Event).
		Str("reference", ref).
		Msg("webhook accepted")

	return nil
}
