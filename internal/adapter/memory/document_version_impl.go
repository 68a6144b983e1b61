package memory

import (
	"context"
	"sync"
	"time"

	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
)

// DocumentVersionRepo is an in-memory DocumentVersionRepository. The single
// mutex serializes AppendIfChanged across all documents, which trivially
// satisfies the per-doc_url_id ordering requirement.
type DocumentVersionRepo struct {
	mu     sync.Mutex
	nextID int64
	chains map[int64][]*entity.DocumentVersion
}

func NewDocumentVersionRepo() *DocumentVersionRepo {
	return &DocumentVersionRepo{chains: make(map[int64][]*entity.DocumentVersion)}
}

func (r *DocumentVersionRepo) Latest(ctx context.Context, docURLID int64) (*entity.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chain := r.chains[docURLID]
	if len(chain) == 0 {
		return nil, repository.ErrNotFound
	}
	return cloneVersion(chain[len(chain)-1]), nil
}

func (r *DocumentVersionRepo) AppendIfChanged(ctx context.Context, docURLID int64, contentHash string, extraData map[string]any) (*entity.DocumentVersion, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chain := r.chains[docURLID]
	if len(chain) > 0 {
		latest := chain[len(chain)-1]
		if latest.ContentHash == contentHash {
			return cloneVersion(latest), false, nil
		}
	}

	r.nextID++
	dv := &entity.DocumentVersion{
		ID:          r.nextID,
		DocURLID:    docURLID,
		Version:     len(chain) + 1,
		ContentHash: contentHash,
		ExtraData:   cloneFields(extraData),
		CreatedAt:   time.Now(),
	}
	r.chains[docURLID] = append(chain, dv)
	return cloneVersion(dv), true, nil
}

func (r *DocumentVersionRepo) ListByDocURL(ctx context.Context, docURLID int64) ([]*entity.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chain := r.chains[docURLID]
	out := make([]*entity.DocumentVersion, 0, len(chain))
	for _, dv := range chain {
		out = append(out, cloneVersion(dv))
	}
	return out, nil
}

func cloneVersion(dv *entity.DocumentVersion) *entity.DocumentVersion {
	c := *dv
	c.ExtraData = cloneFields(dv.ExtraData)
	return &c
}

func cloneFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
