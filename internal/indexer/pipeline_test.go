package indexer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"go.uber.org/mock/gomock"

	"museum-guide/internal/indexer/mocks"
	"museum-guide/internal/storage"
	storage_mocks "museum-guide/internal/storage/mocks"
	"museum-guide/internal/vectorstore"
	vectorstore_mocks "museum-guide/internal/vectorstore/mocks"
)

const (
	testMuseumID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	testColl     = "museum_passages"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

type pipelineMocks struct {
	museums  *storage_mocks.MockMuseumStore
	passages *storage_mocks.MockPassageStore
	embedder *mocks.MockEmbedder
	store    *vectorstore_mocks.MockVectorStore
}

func newTestPipeline(t *testing.T) (*Pipeline, pipelineMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := pipelineMocks{
		museums:  storage_mocks.NewMockMuseumStore(ctrl),
		passages: storage_mocks.NewMockPassageStore(ctrl),
		embedder: mocks.NewMockEmbedder(ctrl),
		store:    vectorstore_mocks.NewMockVectorStore(ctrl),
	}
	return NewPipeline(m.museums, m.passages, m.embedder, m.store, testColl, 3), m
}

func testMuseum() MuseumFixture {
	return MuseumFixture{
		ID:          testMuseumID,
		Name:        "Harbor Museum of Art",
		FoundedYear: 1862,
		Passages: []PassageFixture{
			{Text: "## Collection\n\nMore than **40,000** works.", SourceURL: "https://harbor.example/collection"},
			{Text: "   "},
			{Text: "Free admission on Sundays."},
		},
	}
}

func TestNewPipeline(t *testing.T) {
	p, _ := newTestPipeline(t)

	if p.collection != testColl {
		t.Errorf("collection = %v, want %v", p.collection, testColl)
	}
	if p.batchSize != DefaultBatchSize {
		t.Errorf("batchSize = %d, want %d", p.batchSize, DefaultBatchSize)
	}
	if p.texter == nil {
		t.Error("texter should not be nil")
	}
}

func TestPipeline_IndexMuseum_ReplacesPassages(t *testing.T) {
	p, m := newTestPipeline(t)
	ctx := context.Background()

	var inserted []*storage.PassageRecord
	var upserted []vectorstore.Point

	gomock.InOrder(
		m.museums.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, rec *storage.MuseumRecord) error {
				if rec.ID != testMuseumID || rec.FoundedYear != 1862 {
					t.Errorf("Upsert() record = %+v", rec)
				}
				return nil
			}),
		m.embedder.EXPECT().
			EmbedTexts(ctx, []string{"Collection\n\nMore than 40,000 works.", "Free admission on Sundays."}).
			Return([][]float32{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}, nil),
		m.passages.EXPECT().ListIDsByMuseum(ctx, testMuseumID).Return([]string{"old-1", "old-2"}, nil),
		m.store.EXPECT().Delete(ctx, testColl, []string{"old-1", "old-2"}).Return(nil),
		m.passages.EXPECT().DeleteByMuseum(ctx, testMuseumID).Return(nil),
		m.passages.EXPECT().Insert(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, rec *storage.PassageRecord) error {
				inserted = append(inserted, rec)
				return nil
			}).Times(2),
		m.store.EXPECT().Upsert(ctx, testColl, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, points []vectorstore.Point) error {
				upserted = points
				return nil
			}),
	)

	report := &Report{}
	if err := p.IndexMuseum(ctx, testMuseum(), report); err != nil {
		t.Fatalf("IndexMuseum() error = %v", err)
	}

	if report.PassagesIndexed != 2 || report.PassagesSkipped != 1 || report.PassagesReplaced != 2 {
		t.Errorf("report = %+v", report)
	}
	if len(inserted) != 2 || len(upserted) != 2 {
		t.Fatalf("inserted %d, upserted %d; want 2 and 2", len(inserted), len(upserted))
	}

	for i, point := range upserted {
		if point.ID != inserted[i].ID {
			t.Errorf("point %d id = %s, passage id = %s", i, point.ID, inserted[i].ID)
		}
		if point.Meta[vectorstore.FieldTenantID] != testMuseumID {
			t.Errorf("point %d tenant_id = %v", i, point.Meta[vectorstore.FieldTenantID])
		}
		if point.Meta[vectorstore.FieldText] != inserted[i].Content {
			t.Errorf("point %d text = %v, want %q", i, point.Meta[vectorstore.FieldText], inserted[i].Content)
		}
		if inserted[i].MuseumID != testMuseumID || inserted[i].Position != i {
			t.Errorf("passage %d = %+v", i, inserted[i])
		}
	}

	if upserted[0].Meta[vectorstore.FieldSourceURL] != "https://harbor.example/collection" {
		t.Errorf("point 0 source_url = %v", upserted[0].Meta[vectorstore.FieldSourceURL])
	}
	if _, ok := upserted[1].Meta[vectorstore.FieldSourceURL]; ok {
		t.Error("point 1 should carry no source_url")
	}
}

func TestPipeline_IndexMuseum_EmbeddingFailureKeepsOldPassages(t *testing.T) {
	p, m := newTestPipeline(t)
	ctx := context.Background()

	m.museums.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
	m.embedder.EXPECT().EmbedTexts(ctx, gomock.Any()).Return(nil, errors.New("rate limited"))
	// No list, delete, insert or upsert calls are expected.

	err := p.IndexMuseum(ctx, testMuseum(), &Report{})
	if err == nil {
		t.Fatal("IndexMuseum() expected error")
	}
}

func TestPipeline_IndexMuseum_VectorDeleteFailureKeepsRows(t *testing.T) {
	p, m := newTestPipeline(t)
	ctx := context.Background()

	museum := testMuseum()
	museum.Passages = museum.Passages[2:]

	m.museums.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
	m.embedder.EXPECT().EmbedTexts(ctx, gomock.Any()).Return([][]float32{{1, 0, 0}}, nil)
	m.passages.EXPECT().ListIDsByMuseum(ctx, testMuseumID).Return([]string{"old-1"}, nil)
	m.store.EXPECT().Delete(ctx, testColl, []string{"old-1"}).Return(errors.New("unavailable"))
	// SQLite rows and new vectors are left alone when the vector delete fails.

	report := &Report{}
	if err := p.IndexMuseum(ctx, museum, report); err == nil {
		t.Fatal("IndexMuseum() expected error when old vectors cannot be deleted")
	}
	if report.PassagesReplaced != 0 || report.PassagesIndexed != 0 {
		t.Errorf("report = %+v, want nothing replaced or indexed", report)
	}
}

func TestPipeline_IndexMuseum_NoPassages(t *testing.T) {
	p, m := newTestPipeline(t)
	ctx := context.Background()

	museum := testMuseum()
	museum.Passages = nil

	m.museums.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
	m.passages.EXPECT().ListIDsByMuseum(ctx, testMuseumID).Return(nil, nil)

	report := &Report{}
	if err := p.IndexMuseum(ctx, museum, report); err != nil {
		t.Fatalf("IndexMuseum() error = %v", err)
	}
	if report.PassagesIndexed != 0 {
		t.Errorf("PassagesIndexed = %d, want 0", report.PassagesIndexed)
	}
}

func TestPipeline_EmbedBatches(t *testing.T) {
	p, m := newTestPipeline(t)
	p.batchSize = 2
	ctx := context.Background()

	gomock.InOrder(
		m.embedder.EXPECT().EmbedTexts(ctx, []string{"a", "b"}).Return([][]float32{{1}, {2}}, nil),
		m.embedder.EXPECT().EmbedTexts(ctx, []string{"c"}).Return([][]float32{{3}}, nil),
	)

	got, err := p.embedBatches(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("embedBatches() error = %v", err)
	}
	if len(got) != 3 || got[2][0] != 3 {
		t.Errorf("embedBatches() = %v", got)
	}
}

func TestPipeline_EmbedBatches_CountMismatch(t *testing.T) {
	p, m := newTestPipeline(t)
	ctx := context.Background()

	m.embedder.EXPECT().EmbedTexts(ctx, gomock.Any()).Return([][]float32{{1}}, nil)

	if _, err := p.embedBatches(ctx, []string{"a", "b"}); err == nil {
		t.Fatal("embedBatches() expected count mismatch error")
	}
}

func TestPipeline_IndexAll(t *testing.T) {
	t.Run("collection error stops the run", func(t *testing.T) {
		p, m := newTestPipeline(t)
		ctx := context.Background()

		m.store.EXPECT().EnsureCollection(ctx, testColl, 3).Return(errors.New("dimension mismatch"))

		if _, err := p.IndexAll(ctx, &Fixture{Museums: []MuseumFixture{testMuseum()}}); err == nil {
			t.Fatal("IndexAll() expected error")
		}
	})

	t.Run("failed museum is counted and the run continues", func(t *testing.T) {
		p, m := newTestPipeline(t)
		ctx := context.Background()

		other := MuseumFixture{ID: "3f2b8c1e-5d4a-4e6b-9c7d-8a1b2c3d4e5f", Name: "Valley History Center"}

		m.store.EXPECT().EnsureCollection(ctx, testColl, 3).Return(nil)
		m.museums.EXPECT().Upsert(ctx, gomock.Any()).Return(errors.New("disk full"))
		m.museums.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
		m.passages.EXPECT().ListIDsByMuseum(ctx, other.ID).Return(nil, nil)

		report, err := p.IndexAll(ctx, &Fixture{Museums: []MuseumFixture{testMuseum(), other}})
		if err == nil {
			t.Fatal("IndexAll() expected error summarizing failures")
		}
		if report.MuseumsIndexed != 1 || report.MuseumsFailed != 1 {
			t.Errorf("report = %+v", report)
		}
	})
}
