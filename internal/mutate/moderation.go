package mutate

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"mandalart/internal/model"
)

// RequestDelete files a pending delete request for an existing mandalart.
// Anyone may ask; an admin decides.
func (s *Service) RequestDelete(ctx context.Context, mandalartID, reason string) (model.DeleteRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.DeleteRequest{}, ErrReasonRequired
	}
	if _, err := s.GetMandalart(ctx, mandalartID); err != nil {
		return model.DeleteRequest{}, err
	}
	r, err := s.repo.InsertDeleteRequest(ctx, mandalartID, reason)
	if err != nil {
		return model.DeleteRequest{}, err
	}
	s.log.Info("delete requested", zap.String("request", r.ID), zap.String("mandalart", mandalartID))
	return r, nil
}

// ApproveDeleteRequest deletes the target mandalart (if it still exists) and
// marks the request approved.
func (s *Service) ApproveDeleteRequest(ctx context.Context, requestID string) (model.DeleteRequest, error) {
	v, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return model.DeleteRequest{}, err
	}
	if v.Mandalart != nil {
		err := s.deleteWithImage(ctx, v.MandalartID)
		var nf NotFoundError
		if err != nil && !errors.As(err, &nf) {
			return model.DeleteRequest{}, err
		}
	}
	return s.setStatus(ctx, requestID, model.RequestApproved)
}

// RejectDeleteRequest only flips the status.
func (s *Service) RejectDeleteRequest(ctx context.Context, requestID string) (model.DeleteRequest, error) {
	if _, err := s.pendingRequest(ctx, requestID); err != nil {
		return model.DeleteRequest{}, err
	}
	return s.setStatus(ctx, requestID, model.RequestRejected)
}

func (s *Service) pendingRequest(ctx context.Context, requestID string) (model.DeleteRequestView, error) {
	v, err := s.repo.GetDeleteRequest(ctx, requestID)
	if err != nil {
		return model.DeleteRequestView{}, notFound(err, "delete request", requestID)
	}
	if v.Status != model.RequestPending {
		return model.DeleteRequestView{}, NotPendingError{RequestID: requestID, Status: v.Status}
	}
	return v, nil
}

func (s *Service) setStatus(ctx context.Context, requestID string, status model.RequestStatus) (model.DeleteRequest, error) {
	r, err := s.repo.SetDeleteRequestStatus(ctx, requestID, status)
	if err != nil {
		return model.DeleteRequest{}, notFound(err, "delete request", requestID)
	}
	s.log.Info("delete request moderated", zap.String("request", requestID), zap.String("status", string(status)))
	return r, nil
}
