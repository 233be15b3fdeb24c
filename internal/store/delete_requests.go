package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mandalart/internal/model"
)

const deleteRequestViewQuery = `
	SELECT r.id, r.mandalart_id, r.reason, r.status, r.created_at_unixms, r.updated_at_unixms,
		m.id, m.center, m.user_display_name, m.is_public, m.view_count, m.created_at_unixms
	FROM delete_requests r
	LEFT JOIN mandalarts m ON m.id = r.mandalart_id
`

// InsertDeleteRequest files a pending request against mandalartID.
// Existence of the mandalart is checked by the caller.
func (s *Store) InsertDeleteRequest(ctx context.Context, mandalartID, reason string) (model.DeleteRequest, error) {
	mandalartID = strings.TrimSpace(mandalartID)
	reason = strings.TrimSpace(reason)
	if mandalartID == "" {
		return model.DeleteRequest{}, errors.New("missing mandalart id")
	}
	if reason == "" {
		return model.DeleteRequest{}, errors.New("missing reason")
	}
	now := s.nowUTC()
	r := model.DeleteRequest{
		ID:          uuid.NewString(),
		MandalartID: mandalartID,
		Reason:      reason,
		Status:      model.RequestPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delete_requests(id, mandalart_id, reason, status, created_at_unixms, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?)
	`, r.ID, r.MandalartID, r.Reason, string(r.Status), toUnixMs(now), toUnixMs(now))
	if err != nil {
		return model.DeleteRequest{}, err
	}
	return r, nil
}

func (s *Store) GetDeleteRequest(ctx context.Context, id string) (model.DeleteRequestView, error) {
	row := s.db.QueryRowContext(ctx, deleteRequestViewQuery+` WHERE r.id = ?`, strings.TrimSpace(id))
	v, err := scanDeleteRequestView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DeleteRequestView{}, fmt.Errorf("delete request %s: %w", id, ErrNotFound)
	}
	return v, err
}

// ListDeleteRequests returns requests with the given status, newest first.
// An empty status lists every request.
func (s *Store) ListDeleteRequests(ctx context.Context, status model.RequestStatus) ([]model.DeleteRequestView, error) {
	query := deleteRequestViewQuery
	var args []any
	if status != "" {
		if !status.Valid() {
			return nil, fmt.Errorf("invalid request status: %q (expected pending|approved|rejected)", status)
		}
		query += ` WHERE r.status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY r.created_at_unixms DESC, r.rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.DeleteRequestView{}
	for rows.Next() {
		v, err := scanDeleteRequestView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) SetDeleteRequestStatus(ctx context.Context, id string, status model.RequestStatus) (model.DeleteRequest, error) {
	if !status.Valid() {
		return model.DeleteRequest{}, fmt.Errorf("invalid request status: %q (expected pending|approved|rejected)", status)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE delete_requests SET status = ?, updated_at_unixms = ? WHERE id = ?
	`, string(status), toUnixMs(s.nowUTC()), strings.TrimSpace(id))
	if err != nil {
		return model.DeleteRequest{}, err
	}
	if err := requireAffected(res, "delete request", id); err != nil {
		return model.DeleteRequest{}, err
	}
	v, err := s.GetDeleteRequest(ctx, id)
	if err != nil {
		return model.DeleteRequest{}, err
	}
	return v.DeleteRequest, nil
}

// CountDeleteRequests returns the number of requests per status.
// Every status is present in the result.
func (s *Store) CountDeleteRequests(ctx context.Context) (map[model.RequestStatus]int, error) {
	out := map[model.RequestStatus]int{
		model.RequestPending:  0,
		model.RequestApproved: 0,
		model.RequestRejected: 0,
	}
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM delete_requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.RequestStatus(status)] = n
	}
	return out, rows.Err()
}

func scanDeleteRequestView(r rowScanner) (model.DeleteRequestView, error) {
	var (
		v                  model.DeleteRequestView
		status             string
		createdMs, updMs   int64
		mID, mCenter, mDN  sql.NullString
		mPublic            sql.NullInt64
		mViews, mCreatedMs sql.NullInt64
	)
	if err := r.Scan(&v.ID, &v.MandalartID, &v.Reason, &status, &createdMs, &updMs,
		&mID, &mCenter, &mDN, &mPublic, &mViews, &mCreatedMs); err != nil {
		return model.DeleteRequestView{}, err
	}
	v.Status = model.RequestStatus(status)
	v.CreatedAt = fromUnixMs(createdMs)
	v.UpdatedAt = fromUnixMs(updMs)
	if mID.Valid {
		v.Mandalart = &model.MandalartSummary{
			ID:              mID.String,
			Center:          mCenter.String,
			UserDisplayName: mDN.String,
			IsPublic:        mPublic.Int64 != 0,
			ViewCount:       mViews.Int64,
			CreatedAt:       fromUnixMs(mCreatedMs.Int64),
		}
	}
	return v, nil
}
