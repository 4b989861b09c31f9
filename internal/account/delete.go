package account

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"acctdesk/internal/logging"
	"acctdesk/internal/transport"
)

// ErrDeleteFailed is returned when the backend did not delete the record.
var ErrDeleteFailed = errors.New("delete failed")

const deleteFailedText = "Could not delete the account"

// Notifier shows a blocking notice to the user.
type Notifier interface {
	Alert(msg string)
}

// Remover deletes a single record.
type Remover struct {
	id       int64
	tr       transport.Transport
	notifier Notifier
	log      logging.Logger
}

func NewRemover(id int64, tr transport.Transport, notifier Notifier, log logging.Logger) *Remover {
	return &Remover{id: id, tr: tr, notifier: notifier, log: log.With("account_id", id)}
}

// Delete sends one delete request. onSuccess runs only when the backend
// confirmed; on failure the user is alerted and nothing else changes.
func (r *Remover) Delete(ctx context.Context, onSuccess func()) error {
	resp, err := r.tr.Send(ctx, http.MethodDelete, fmt.Sprintf("/accounts/delete/%d", r.id), nil)
	if err := transport.Check(resp, err); err != nil {
		r.log.Warn(ctx, "delete failed", "err", err)
		if r.notifier != nil {
			r.notifier.Alert(deleteFailedText)
		}
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	r.log.Info(ctx, "account deleted")
	if onSuccess != nil {
		onSuccess()
	}
	return nil
}
