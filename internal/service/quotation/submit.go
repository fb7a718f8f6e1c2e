package quotation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/domain/models"
)

// Submit runs the aggregation pipeline: full validation of the live form,
// a completeness walk over every service of the enquiry, and — once
// confirmed — one ERP call carrying all parked forms. An upstream failure
// leaves every snapshot in place so the user can retry without retyping.
func (s *Service) Submit(ctx context.Context, sessionID string, confirm bool) (*models.SubmitResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()

	if errs := validateForm(sess.form, true); errs != nil {
		sess.form.FieldErrors = errs
		sess.form.State = models.StateDirty
		sess.mu.Unlock()
		return nil, &ValidationError{Fields: errs}
	}
	if err := transition(&sess.form, models.StateValidated); err != nil {
		sess.mu.Unlock()
		return nil, err
	}

	// Park the live form before aggregating so it is part of the payload.
	s.drafts.Put(sess.id, sess.form.EntityID, models.DraftEntry{
		Form:         sess.form,
		HasQuotation: true,
	})

	entries := s.drafts.Entries(sess.id)
	var unfilled []int
	for idx, svc := range sess.services {
		entry, ok := entries[svc.ID]
		if !ok || !formComplete(entry.Form) {
			unfilled = append(unfilled, idx)
		}
	}

	if len(unfilled) > 0 && !confirm {
		sess.mu.Unlock()
		return &models.SubmitResult{
			Submitted:        false,
			UnfilledServices: unfilled,
			Message:          fmt.Sprintf("%d service(s) have no quotation yet", len(unfilled)),
		}, nil
	}

	if sess.submitting {
		sess.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	sess.submitting = true

	submission := models.QuotationSubmission{
		EnquiryID:   sess.enquiryID,
		QuotationID: sess.quotationID,
		Services:    make([]models.ServicePayload, 0, len(entries)),
	}
	for _, svc := range sess.services {
		entry, ok := entries[svc.ID]
		if !ok {
			continue
		}
		submission.Services = append(submission.Services, models.ServicePayload{
			ServiceID: svc.ID,
			Scalars:   entry.Form.Scalars,
			Charges:   entry.Form.Charges,
			Totals:    Totals(entry.Form.Charges),
		})
	}
	editID := sess.quotationID

	// Release the session lock for the network call; the submitting flag
	// keeps a second Submit from producing a duplicate upstream request.
	sess.mu.Unlock()

	ack, submitErr := s.persist(ctx, editID, submission)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.submitting = false

	if submitErr != nil {
		s.logger.Error("quotation submission failed",
			zap.String("session_id", sess.id),
			zap.String("enquiry_id", sess.enquiryID),
			zap.Error(submitErr))
		s.notifier.Send(ctx, models.Notification{
			Type:    models.NoticeError,
			Message: submitErr.Error(),
		})
		return nil, submitErr
	}

	if err := transition(&sess.form, models.StateSubmitted); err != nil {
		// The form may have been edited while the request was in flight;
		// the submission itself still stands.
		s.logger.Warn("form state moved during submission", zap.Error(err))
	}
	s.drafts.MarkSubmitted(sess.id)
	if sess.quotationID == "" {
		sess.quotationID = ack.QuotationID
	}
	if s.register != nil {
		s.register.RecordSubmission(ctx, submission, sess.quotationID)
	}

	s.logger.Info("quotation submitted",
		zap.String("session_id", sess.id),
		zap.String("quotation_id", sess.quotationID),
		zap.Int("services", len(submission.Services)))
	s.notifier.Send(ctx, models.Notification{
		Type:    models.NoticeSuccess,
		Message: fmt.Sprintf("quotation %s saved", sess.quotationID),
	})

	return &models.SubmitResult{
		Submitted:   true,
		QuotationID: sess.quotationID,
		Message:     ack.Message,
	}, nil
}

func (s *Service) persist(ctx context.Context, editID string, submission models.QuotationSubmission) (*ackResult, error) {
	if editID != "" {
		ack, err := s.erp.UpdateQuotation(ctx, editID, submission)
		if err != nil {
			return nil, fmt.Errorf("update quotation: %w", err)
		}
		return &ackResult{QuotationID: editID, Message: ack.Message}, nil
	}
	ack, err := s.erp.CreateQuotation(ctx, submission)
	if err != nil {
		return nil, fmt.Errorf("create quotation: %w", err)
	}
	return &ackResult{QuotationID: ack.QuotationID, Message: ack.Message}, nil
}

type ackResult struct {
	QuotationID string
	Message     string
}
