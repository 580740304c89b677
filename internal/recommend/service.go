// Package recommend implements the two recommendation use cases: building a
// ranked list for a client and fanning out alerts when a property is listed.
package recommend

import (
	"context"
	"sort"
	"time"

	apperrors "github.com/martin-coser/ArqViewBack-sub000/internal/common/errors"
	"github.com/martin-coser/ArqViewBack-sub000/internal/common/logger"
	"github.com/martin-coser/ArqViewBack-sub000/internal/common/metrics"
	"github.com/martin-coser/ArqViewBack-sub000/internal/common/observability"
	"github.com/martin-coser/ArqViewBack-sub000/internal/engine"
	"github.com/martin-coser/ArqViewBack-sub000/internal/models"
	"github.com/martin-coser/ArqViewBack-sub000/internal/notify"
)

// Store is the persistence surface the service needs.
type Store interface {
	GetClient(ctx context.Context, clientID int64) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	GetProperty(ctx context.Context, propertyID int64) (*models.Property, error)
	ListProperties(ctx context.Context) ([]models.Property, error)
	InterestProperties(ctx context.Context, clientID int64) ([]models.Property, error)
	ListInterestLists(ctx context.Context) ([]models.InterestList, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// WeightsCache memoizes weight vectors between requests. Implementations
// must treat every operation as best effort.
type WeightsCache interface {
	Get(ctx context.Context, key string) (engine.Weights, engine.Ranges, bool)
	Set(ctx context.Context, key string, w engine.Weights, r engine.Ranges)
}

// Mailer delivers a rendered email message.
type Mailer interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// SMSSender delivers a short text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

type Config struct {
	// MaxResults caps the recommendation list.
	MaxResults int
	// RelativeThreshold keeps candidates scoring at least this fraction of
	// the best score.
	RelativeThreshold float64
	// NotifyThreshold is the minimum mean score for a listing alert.
	NotifyThreshold float64
	EmailEnabled    bool
	SMSEnabled      bool
	FromEmail       string
}

type Service struct {
	cfg    Config
	store  Store
	cache  WeightsCache
	mailer Mailer
	sms    SMSSender
	logger logger.Logger
	obs    *observability.Observability
}

// NewService wires the use cases. cache, mailer, sms and obs may be nil;
// the matching behavior is simply disabled.
func NewService(cfg Config, store Store, cache WeightsCache, mailer Mailer, sms SMSSender, log logger.Logger, obs *observability.Observability) *Service {
	return &Service{
		cfg:    cfg,
		store:  store,
		cache:  cache,
		mailer: mailer,
		sms:    sms,
		logger: log,
		obs:    obs,
	}
}

type scoredProperty struct {
	property models.Property
	score    float64
}

// GenerateRecommendations returns the best-matching catalog properties for a
// client, ranked by mean similarity against the client's interest list. A
// client without saved properties gets an empty list. The threshold is
// relative to the best score found, so a weak overall field still yields the
// closest matches.
func (s *Service) GenerateRecommendations(ctx context.Context, clientID int64) ([]models.Property, error) {
	start := time.Now()
	defer func() {
		metrics.RecommendationDuration.WithLabelValues("generate").Observe(time.Since(start).Seconds())
		if s.obs != nil {
			s.obs.RecordScoringDuration(ctx, time.Since(start), "generate")
		}
	}()

	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		metrics.RecommendationsGenerated.WithLabelValues("error").Inc()
		return nil, err
	}

	refs, err := s.store.InterestProperties(ctx, clientID)
	if err != nil {
		metrics.RecommendationsGenerated.WithLabelValues("error").Inc()
		return nil, err
	}
	if len(refs) == 0 {
		s.logger.Info("client has no interest list, nothing to recommend", map[string]interface{}{
			"clientId": clientID,
		})
		metrics.RecommendationsGenerated.WithLabelValues("empty").Inc()
		return []models.Property{}, nil
	}

	catalog, err := s.store.ListProperties(ctx)
	if err != nil {
		metrics.RecommendationsGenerated.WithLabelValues("error").Inc()
		return nil, err
	}
	if len(catalog) == 0 {
		metrics.RecommendationsGenerated.WithLabelValues("empty").Inc()
		return []models.Property{}, nil
	}

	weights, ranges := s.weightsFor(ctx, refs)
	if s.obs != nil {
		s.obs.RecordScoringRun(ctx, "generate")
	}

	saved := make(map[int64]struct{}, len(refs))
	for _, ref := range refs {
		saved[ref.ID] = struct{}{}
	}

	scored := make([]scoredProperty, 0, len(catalog))
	maxScore := 0.0
	for _, candidate := range catalog {
		score := engine.MeanSimilarity(refs, candidate, weights, ranges)
		if score > maxScore {
			maxScore = score
		}
		scored = append(scored, scoredProperty{property: candidate, score: score})
	}
	if maxScore <= 0 {
		metrics.RecommendationsGenerated.WithLabelValues("empty").Inc()
		return []models.Property{}, nil
	}

	threshold := s.cfg.RelativeThreshold * maxScore
	result := make([]scoredProperty, 0, len(scored))
	for _, sp := range scored {
		if _, ok := saved[sp.property.ID]; ok {
			continue
		}
		if sp.score >= threshold {
			result = append(result, sp)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].score > result[j].score })
	if len(result) > s.cfg.MaxResults {
		result = result[:s.cfg.MaxResults]
	}

	properties := make([]models.Property, len(result))
	for i, sp := range result {
		properties[i] = sp.property
	}

	s.logger.Info("recommendations generated", map[string]interface{}{
		"clientId":   clientID,
		"candidates": len(catalog),
		"returned":   len(properties),
		"maxScore":   maxScore,
	})
	metrics.RecommendationsGenerated.WithLabelValues("ok").Inc()
	return properties, nil
}

// NotifyNewListing scores a freshly listed property against every client's
// interest list and alerts the clients it matches. An unknown property id is
// logged and dropped; delivery failures never stop the fan-out.
func (s *Service) NotifyNewListing(ctx context.Context, propertyID int64) error {
	start := time.Now()
	defer func() {
		metrics.RecommendationDuration.WithLabelValues("notify").Observe(time.Since(start).Seconds())
		if s.obs != nil {
			s.obs.RecordScoringDuration(ctx, time.Since(start), "notify")
		}
	}()

	property, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.logger.Warn("listed property not found, skipping fan-out", map[string]interface{}{
				"propertyId": propertyID,
			})
			return nil
		}
		return err
	}

	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return err
	}
	lists, err := s.store.ListInterestLists(ctx)
	if err != nil {
		return err
	}
	listsByClient := make(map[int64][]models.Property, len(lists))
	for _, list := range lists {
		listsByClient[list.ClientID] = list.Properties
	}

	notified := 0
	for _, client := range clients {
		refs := listsByClient[client.ID]
		if len(refs) == 0 {
			continue
		}
		metrics.ClientsEvaluated.Inc()

		weights, ranges := s.weightsFor(ctx, refs)
		score := engine.MeanSimilarity(refs, *property, weights, ranges)
		s.logger.Debug("listing scored for client", map[string]interface{}{
			"clientId":   client.ID,
			"propertyId": propertyID,
			"score":      score,
		})
		if score <= s.cfg.NotifyThreshold {
			continue
		}

		if s.notifyClient(ctx, client, *property) {
			notified++
		}
	}

	s.logger.Info("listing fan-out complete", map[string]interface{}{
		"propertyId": propertyID,
		"clients":    len(clients),
		"notified":   notified,
	})
	if s.obs != nil {
		s.obs.RecordScoringRun(ctx, "notify")
	}
	return nil
}

// notifyClient persists the notification and attempts delivery. Reports
// whether the notification was recorded.
func (s *Service) notifyClient(ctx context.Context, client models.Client, property models.Property) bool {
	notification := &models.Notification{
		Message:    notify.NewListingMessage(property),
		Type:       models.NotificationTypeNewProperty,
		ClientID:   client.ID,
		PropertyID: property.ID,
		CreatedAt:  time.Now().UTC(),
		Read:       false,
	}
	if err := s.store.CreateNotification(ctx, notification); err != nil {
		s.logger.WithError(err).Error("notification persist failed", map[string]interface{}{
			"clientId":   client.ID,
			"propertyId": property.ID,
		})
		return false
	}
	metrics.NotificationsPersisted.Inc()

	if s.cfg.EmailEnabled && s.mailer != nil && client.Email != "" {
		msg := notify.NewListingEmail(client, property, s.cfg.FromEmail)
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.logger.WithError(err).Error("listing email failed", map[string]interface{}{
				"clientId": client.ID,
				"email":    client.Email,
			})
			metrics.NotificationDeliveries.WithLabelValues("email", "error").Inc()
		} else {
			metrics.NotificationDeliveries.WithLabelValues("email", "ok").Inc()
		}
	}

	if s.cfg.SMSEnabled && s.sms != nil && client.Phone != "" {
		text := notify.NewListingSMS(client, property)
		if err := s.sms.Send(ctx, client.Phone, text); err != nil {
			s.logger.WithError(err).Error("listing sms failed", map[string]interface{}{
				"clientId": client.ID,
			})
			metrics.NotificationDeliveries.WithLabelValues("sms", "error").Inc()
		} else {
			metrics.NotificationDeliveries.WithLabelValues("sms", "ok").Inc()
		}
	}
	return true
}

// weightsFor resolves the weight vector for a reference set, consulting the
// cache when one is configured.
func (s *Service) weightsFor(ctx context.Context, refs []models.Property) (engine.Weights, engine.Ranges) {
	if s.cache == nil {
		return engine.ComputeWeights(refs)
	}

	key := WeightsCacheKey(refs)
	if w, r, ok := s.cache.Get(ctx, key); ok {
		return w, r
	}
	w, r := engine.ComputeWeights(refs)
	s.cache.Set(ctx, key, w, r)
	return w, r
}
