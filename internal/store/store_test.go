package store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"mandalart/internal/grid"
	"mandalart/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// steppedClock returns a clock that advances one second per call.
func steppedClock() func() time.Time {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

func sampleMandalart(userID, center string) model.Mandalart {
	m := model.Mandalart{UserID: userID, IsPublic: true}
	m.Center = center
	for th := range m.Themes {
		m.Themes[th].Title = center + " theme"
		m.Themes[th].Details[0] = "first step"
	}
	return m
}

func TestOpen_AppliesMigrationsIdempotently(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	v, err := s.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if v != 1 {
		t.Fatalf("expected schema version 1, got %d", v)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if _, err := os.Stat(filepath.Join(dir, sqliteFileName)); err != nil {
		t.Fatalf("expected sqlite file: %v", err)
	}
}

func TestOpen_RequiresDir(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestMeta_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Meta(ctx, "k"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := s.SetMeta(ctx, "k", "a"); err != nil {
		t.Fatalf("set meta: %v", err)
	}
	if err := s.SetMeta(ctx, "k", "b"); err != nil {
		t.Fatalf("overwrite meta: %v", err)
	}
	v, ok, err := s.Meta(ctx, "k")
	if err != nil || !ok || v != "b" {
		t.Fatalf("unexpected meta: %q ok=%v err=%v", v, ok, err)
	}
}

func TestUsers_CreateFindAndCLIUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, model.UserKindAnonymous, "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	got, err := s.FindUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if got.ID != u.ID || got.Kind != model.UserKindAnonymous {
		t.Fatalf("unexpected user: %+v", got)
	}
	if _, err := s.FindUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.CreateUser(ctx, model.UserKind("robot"), ""); err == nil {
		t.Fatalf("expected invalid kind error")
	}

	cli1, err := s.CLIUser(ctx)
	if err != nil {
		t.Fatalf("cli user: %v", err)
	}
	cli2, err := s.CLIUser(ctx)
	if err != nil {
		t.Fatalf("cli user again: %v", err)
	}
	if cli1.ID != cli2.ID || cli1.Kind != model.UserKindCLI {
		t.Fatalf("expected a stable cli user, got %+v and %+v", cli1, cli2)
	}
}

func TestMandalarts_InsertGetUpdateDelete(t *testing.T) {
	s := openTestStore(t)
	s.SetClock(steppedClock())
	ctx := context.Background()

	in := sampleMandalart("user-a", "Run a marathon")
	in.Tags = []string{" health ", "health", ""}
	created, err := s.InsertMandalart(ctx, in)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.ID == "" || created.UserDisplayName != model.DefaultDisplayName {
		t.Fatalf("expected id and default display name: %+v", created)
	}
	if diff := cmp.Diff([]string{"health"}, created.Tags); diff != "" {
		t.Fatalf("unexpected tags (-want +got):\n%s", diff)
	}

	got, err := s.GetMandalart(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("get mismatch (-want +got):\n%s", diff)
	}

	got.Grid.Themes[3].Details[7] = "new detail"
	got.IsPublic = false
	got.UserDisplayName = "Kim"
	updated, err := s.UpdateMandalart(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Themes[3].Details[7] != "new detail" || updated.IsPublic || updated.UserDisplayName != "Kim" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updated_at to advance: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}

	if err := s.SetOGImageURL(ctx, created.ID, "/og-images/x.png"); err != nil {
		t.Fatalf("set og url: %v", err)
	}
	if err := s.DeleteMandalart(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetMandalart(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteMandalart(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
	if err := s.SetOGImageURL(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMandalarts_RecordViewIncrements(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	m, err := s.InsertMandalart(ctx, sampleMandalart("u", "Goal"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	for i := 1; i <= 3; i++ {
		got, err := s.RecordView(ctx, m.ID)
		if err != nil {
			t.Fatalf("record view: %v", err)
		}
		if got.ViewCount != int64(i) {
			t.Fatalf("expected view count %d, got %d", i, got.ViewCount)
		}
	}
	if _, err := s.RecordView(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMandalarts_ListPublicNewestFirstWithPaging(t *testing.T) {
	s := openTestStore(t)
	s.SetClock(steppedClock())
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		m := sampleMandalart("u", "Goal "+string(rune('A'+i)))
		m.IsPublic = i != 2
		created, err := s.InsertMandalart(ctx, m)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, created.ID)
	}

	page1, err := s.ListPublic(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	page2, err := s.ListPublic(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, m := range append(page1, page2...) {
		got = append(got, m.ID)
	}
	want := []string{ids[4], ids[3], ids[1], ids[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected public order (-want +got):\n%s", diff)
	}

	mine, err := s.ListByUser(ctx, "u", 0, 0)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 5 {
		t.Fatalf("expected private mandalarts in the owner list, got %d", len(mine))
	}
	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 5 || all[0].ID != ids[0] {
		t.Fatalf("expected oldest-first full list, got %d items", len(all))
	}
	n, err := s.CountMandalarts(ctx)
	if err != nil || n != 5 {
		t.Fatalf("count: %d %v", n, err)
	}
}

func TestDeleteRequests_Lifecycle(t *testing.T) {
	s := openTestStore(t)
	s.SetClock(steppedClock())
	ctx := context.Background()

	m, err := s.InsertMandalart(ctx, sampleMandalart("u", "Goal"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.InsertDeleteRequest(ctx, m.ID, "   "); err == nil {
		t.Fatalf("expected missing reason error")
	}
	r1, err := s.InsertDeleteRequest(ctx, m.ID, "spam")
	if err != nil {
		t.Fatalf("insert request: %v", err)
	}
	r2, err := s.InsertDeleteRequest(ctx, m.ID, "duplicate")
	if err != nil {
		t.Fatalf("insert request: %v", err)
	}
	if r1.Status != model.RequestPending {
		t.Fatalf("expected pending, got %q", r1.Status)
	}

	pending, err := s.ListDeleteRequests(ctx, model.RequestPending)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != r2.ID {
		t.Fatalf("expected newest-first pending list, got %+v", pending)
	}
	if pending[0].Mandalart == nil || pending[0].Mandalart.Center != "Goal" {
		t.Fatalf("expected joined mandalart summary, got %+v", pending[0].Mandalart)
	}

	if _, err := s.SetDeleteRequestStatus(ctx, r1.ID, model.RequestApproved); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := s.DeleteMandalart(ctx, m.ID); err != nil {
		t.Fatalf("delete mandalart: %v", err)
	}
	v, err := s.GetDeleteRequest(ctx, r1.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if v.Status != model.RequestApproved || v.Mandalart != nil || v.Target() != "deleted" {
		t.Fatalf("unexpected request view: %+v", v)
	}

	if _, err := s.SetDeleteRequestStatus(ctx, r2.ID, model.RequestStatus("done")); err == nil {
		t.Fatalf("expected invalid status error")
	}
	if _, err := s.SetDeleteRequestStatus(ctx, "missing", model.RequestRejected); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	counts, err := s.CountDeleteRequests(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	want := map[model.RequestStatus]int{model.RequestPending: 1, model.RequestApproved: 1, model.RequestRejected: 0}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Fatalf("unexpected counts (-want +got):\n%s", diff)
	}

	all, err := s.ListDeleteRequests(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("list all: %d %v", len(all), err)
	}
}

func TestObjects_PutOpenRemove(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.PutObject(OGImagesBucket, "a.png", strings.NewReader("one")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.PutObject(OGImagesBucket, "a.png", strings.NewReader("two")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	f, err := s.OpenObject(OGImagesBucket, "a.png")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	b, _ := io.ReadAll(f)
	_ = f.Close()
	if string(b) != "two" {
		t.Fatalf("expected upserted content, got %q", b)
	}

	if err := s.RemoveObject(OGImagesBucket, "a.png"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveObject(OGImagesBucket, "a.png"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	if _, err := s.OpenObject(OGImagesBucket, "a.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestObjects_RejectTraversal(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"", "..", "../x.png", "a/b.png", `a\b.png`} {
		if _, err := s.ObjectPath(OGImagesBucket, name); err == nil {
			t.Fatalf("expected error for %q", name)
		}
	}
	if _, err := s.ObjectPath("..", "x.png"); err == nil {
		t.Fatalf("expected error for bucket traversal")
	}
}

func TestDrafts_SaveLoadClear(t *testing.T) {
	d := Drafts{Dir: t.TempDir()}

	empty, err := d.Load()
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if empty.Version != 1 || !empty.Grid.IsEmpty() {
		t.Fatalf("expected empty draft, got %+v", empty)
	}

	var g grid.Grid
	g.Center = "Goal"
	g.Themes[1].Details[2] = "step"
	if err := d.Save(&Draft{Grid: g}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := d.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(g, got.Grid); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps, got %+v", got)
	}

	if err := d.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := d.Clear(); err != nil {
		t.Fatalf("clear missing: %v", err)
	}
	after, _ := d.Load()
	if !after.Grid.IsEmpty() {
		t.Fatalf("expected empty draft after clear")
	}
}

func TestDrafts_CorruptLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, draftFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Drafts{Dir: dir}.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Grid.IsEmpty() {
		t.Fatalf("expected empty draft, got %+v", got)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dest := filepath.Join(dir, "nested", "b.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := CopyFile(src, dest); err != nil {
		t.Fatalf("copy: %v", err)
	}
	b, err := os.ReadFile(dest)
	if err != nil || string(b) != "hello" {
		t.Fatalf("unexpected copy: %q %v", b, err)
	}
}
