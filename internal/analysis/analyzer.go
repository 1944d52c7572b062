package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"civiclens/internal/cache"
	"civiclens/internal/complaint"
	"civiclens/internal/llm"
	"civiclens/internal/prompt"
	"civiclens/internal/taxonomy"
)

// Analyzer runs one complaint through normalize → prompt → model → parse
// and owns every intermediate object of a request. The taxonomy and
// configuration it holds are read-only, so concurrent Analyze calls share
// nothing mutable.
type Analyzer struct {
	tax      *taxonomy.Taxonomy
	gateway  *llm.Gateway
	cache    *cache.Cache
	maxChars int
}

func New(tax *taxonomy.Taxonomy, gateway *llm.Gateway, c *cache.Cache, maxChars int) *Analyzer {
	return &Analyzer{tax: tax, gateway: gateway, cache: c, maxChars: maxChars}
}

func (a *Analyzer) Taxonomy() *taxonomy.Taxonomy { return a.tax }

// Analyze turns raw complaint text into a validated Result. On failure it
// returns a *Error whose Kind tells the caller which stage gave up;
// partial results are never returned. Only the gateway's own retry loop
// repeats work: the input is deterministic and the model's answer is
// treated as final, so input and parse failures are not retried here.
func (a *Analyzer) Analyze(ctx context.Context, raw string) (*Result, error) {
	requestID := uuid.NewString()
	log.Printf("analysis request_id=%s stage=received", requestID)

	text, err := complaint.Normalize(raw, a.maxChars)
	if err != nil {
		var tooLong *complaint.TooLongError
		kind, msg := KindEmptyInput, "complaint text is empty"
		if errors.As(err, &tooLong) {
			kind, msg = KindInputTooLong, tooLong.Error()
		}
		log.Printf("analysis request_id=%s stage=failed kind=%s", requestID, kind)
		return nil, &Error{Kind: kind, Message: msg, RequestID: requestID, Err: err}
	}
	log.Printf("analysis request_id=%s stage=normalized chars=%d", requestID, utf8.RuneCountInString(text))

	cacheKey := cache.Key(a.tax.Version, text)
	if data, ok, cerr := a.cache.Get(ctx, cacheKey); cerr != nil {
		log.Printf("analysis request_id=%s cache_get_error=%v", requestID, cerr)
	} else if ok {
		var cached Result
		if uerr := json.Unmarshal(data, &cached); uerr == nil {
			cached.RequestID = requestID
			cached.Cached = true
			cached.Attempts = 0
			log.Printf("analysis request_id=%s stage=complete cached=true category=%s severity=%s",
				requestID, cached.Category, cached.Severity)
			return &cached, nil
		}
	}

	promptText := prompt.Build(text, a.tax)
	log.Printf("analysis request_id=%s stage=prompt_built", requestID)

	rawAnswer, attempts, err := a.gateway.Invoke(ctx, promptText)
	if err != nil {
		return nil, a.gatewayError(requestID, attempts, err)
	}
	log.Printf("analysis request_id=%s stage=model_answered attempts=%d", requestID, attempts)

	answer, perr := ParseAnswer(rawAnswer, a.tax)
	if perr != nil {
		perr.RequestID = requestID
		log.Printf("analysis request_id=%s stage=failed kind=%s", requestID, perr.Kind)
		return nil, perr
	}
	log.Printf("analysis request_id=%s stage=parsed category=%s severity=%s", requestID, answer.Category, answer.Severity)

	severity := a.tax.FloorSeverity(answer.Severity, answer.Tags)
	route, _ := a.tax.RouteFor(answer.Category)

	provider := a.gateway.Provider()
	result := &Result{
		RequestID:        requestID,
		Text:             text,
		Category:         answer.Category,
		Severity:         severity,
		Tags:             answer.Tags,
		Rationale:        answer.Rationale,
		Confidence:       answer.Confidence,
		SuggestedActions: answer.SuggestedActions,
		Routing:          route,
		TaxonomyVersion:  a.tax.Version,
		Provider:         provider.Name(),
		Model:            provider.Model(),
		Attempts:         attempts,
		CreatedAt:        time.Now().UTC(),
	}

	if data, merr := json.Marshal(result); merr == nil {
		if cerr := a.cache.Set(ctx, cacheKey, data); cerr != nil {
			log.Printf("analysis request_id=%s cache_set_error=%v", requestID, cerr)
		}
	}

	log.Printf("analysis request_id=%s stage=complete category=%s severity=%s confidence=%.2f",
		requestID, result.Category, result.Severity, result.Confidence)
	return result, nil
}

// gatewayError maps a gateway failure to its tagged kind.
func (a *Analyzer) gatewayError(requestID string, attempts int, err error) *Error {
	var exhausted *llm.ExhaustedError
	if errors.As(err, &exhausted) {
		log.Printf("analysis request_id=%s stage=failed kind=%s attempts=%d", requestID, KindUpstreamExhausted, attempts)
		return &Error{
			Kind:      KindUpstreamExhausted,
			Message:   fmt.Sprintf("model unavailable after %d attempts (last failure: %s)", exhausted.Attempts, llm.Classify(exhausted.Last)),
			RequestID: requestID,
			Err:       err,
		}
	}

	var kind Kind
	switch llm.Classify(err) {
	case llm.ErrorTypeTimeout:
		kind = KindTimeout
	case llm.ErrorTypeRateLimited:
		kind = KindRateLimited
	case llm.ErrorTypeUnauthorized:
		kind = KindUnauthorized
	case llm.ErrorTypeUnavailable:
		kind = KindServiceUnavailable
	default:
		kind = KindUnknownUpstream
	}
	if errors.Is(err, context.Canceled) {
		kind = KindTimeout
	}
	log.Printf("analysis request_id=%s stage=failed kind=%s attempts=%d", requestID, kind, attempts)
	return &Error{Kind: kind, Message: err.Error(), RequestID: requestID, Err: err}
}
