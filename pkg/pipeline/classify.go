package pipeline

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/abacus/pkg/domain"
)

// Classify maps a failed evaluator call onto the failure taxonomy.
//
//   - *domain.StatusError in [400,500): client, remote message preferred
//   - *domain.StatusError >= 500: server
//   - any other *domain.StatusError: unknown
//   - context.Canceled: canceled
//   - anything else, including client timeouts: network (no response received)
func Classify(err error) domain.EvaluationResult {
	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr)
	}
	if errors.Is(err, context.Canceled) {
		return domain.Failure(domain.FailureCanceled, domain.MessageCanceled)
	}
	return domain.Failure(domain.FailureNetwork, domain.MessageNetwork)
}

func classifyStatus(e *domain.StatusError) domain.EvaluationResult {
	switch {
	case e.Status >= http.StatusBadRequest && e.Status < http.StatusInternalServerError:
		msg := e.Message
		if msg == "" {
			msg = domain.MessageClient
		}
		return domain.Failure(domain.FailureClient, msg)
	case e.Status >= http.StatusInternalServerError:
		return domain.Failure(domain.FailureServer, domain.MessageServer)
	default:
		return domain.Failure(domain.FailureUnknown, domain.MessageUnknown)
	}
}
