package settlement

import (
	"context"
	"fmt"

	"amm-settlement-lab/internal/chain"
	"amm-settlement-lab/internal/domain"
	"amm-settlement-lab/internal/observability"
)

// Submitter sends settlement requests and maps program rejections to
// typed errors. Submission is single-shot: a transport failure or
// rejection goes back to the caller, who re-quotes before trying
// again. Retrying a stale request here would just collide with the
// program's bounds a second time.
type Submitter struct {
	client chain.SettlementClient
}

// NewSubmitter creates a settlement submitter.
func NewSubmitter(client chain.SettlementClient) *Submitter {
	return &Submitter{client: client}
}

// Submit sends one settlement request. A non-zero program code becomes
// a *domain.SettlementRejectedError carrying the program's reason
// verbatim; the transaction hash is returned for accepted requests.
func (s *Submitter) Submit(ctx context.Context, req Request) (string, error) {
	res, err := s.client.SubmitSettlement(ctx, req)
	if err != nil {
		return "", fmt.Errorf("submit settlement: %w", err)
	}
	observability.RecordSettlement(req.RequestKind(), res.Code)
	if res.Code != 0 {
		return "", &domain.SettlementRejectedError{
			Code:   res.Code,
			RawLog: res.RawLog,
			TxHash: res.TxHash,
		}
	}
	return res.TxHash, nil
}
