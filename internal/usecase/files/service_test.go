package files

import (
	"context"
	"sort"
	"testing"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/rise-and-shine/filestash/pkg/filestore/diskwr"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory metadataRepo with the same filter semantics
// as the PostgreSQL repository.
type memRepo struct {
	nextID int64
	recs   map[int64]domain.File

	createErr error
}

func newMemRepo() *memRepo {
	return &memRepo{recs: map[int64]domain.File{}}
}

func (m *memRepo) Create(_ context.Context, entity *domain.File) (*domain.File, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	entity.ID = m.nextID
	m.recs[entity.ID] = *entity
	return entity, nil
}

func (m *memRepo) Update(_ context.Context, entity *domain.File) (*domain.File, error) {
	if _, ok := m.recs[entity.ID]; !ok {
		return nil, errx.New("no File found to update")
	}
	m.recs[entity.ID] = *entity
	return entity, nil
}

func (m *memRepo) FirstOrNil(_ context.Context, f repository.FileFilters) (*domain.File, error) {
	for _, rec := range m.sorted() {
		if matches(rec, f) {
			rec := rec
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *memRepo) List(_ context.Context, f repository.FileFilters) ([]domain.File, error) {
	var all []domain.File
	for _, rec := range m.sorted() {
		if matches(rec, f) {
			all = append(all, rec)
		}
	}

	if f.Limit <= 0 {
		return all, nil
	}
	if f.Offset >= len(all) {
		return nil, nil
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[f.Offset:end], nil
}

func (m *memRepo) sorted() []domain.File {
	out := make([]domain.File, 0, len(m.recs))
	for _, rec := range m.recs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matches(rec domain.File, f repository.FileFilters) bool {
	if f.ID != nil && rec.ID != *f.ID {
		return false
	}
	if f.UserID != nil && rec.UserID != *f.UserID {
		return false
	}
	if f.Parent != nil {
		if f.Parent.IsRoot() {
			if rec.ParentID != nil {
				return false
			}
		} else if rec.ParentID == nil || *rec.ParentID != f.Parent.ID() {
			return false
		}
	}
	return true
}

// recordingDispatcher records dispatched jobs and can be told to fail.
type recordingDispatcher struct {
	jobs []domain.Job
	err  error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, job domain.Job) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

type testEnv struct {
	svc  *Service
	repo *memRepo
	disp *recordingDispatcher
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	if cfg.PageSize == 0 {
		cfg.PageSize = 20
	}

	store, err := diskwr.New(diskwr.Config{Root: t.TempDir()})
	require.NoError(t, err)

	repo := newMemRepo()
	disp := &recordingDispatcher{}

	return &testEnv{
		svc:  NewService(cfg, repo, store, disp),
		repo: repo,
		disp: disp,
	}
}

// mustCreate seeds a record directly through the repo.
func (e *testEnv) mustCreate(t *testing.T, rec domain.File) domain.File {
	t.Helper()
	created, err := e.repo.Create(context.Background(), &rec)
	require.NoError(t, err)
	return *created
}

func errCode(err error) string {
	return errx.AsErrorX(err).Code()
}

func filtersByID(id int64) repository.FileFilters {
	return repository.FileFilters{ID: &id}
}
