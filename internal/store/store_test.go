package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/trailnet/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlite"), mock
}

func TestVertexStoreUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO vertices").
		WithArgs(models.VertexID(1), 1.0, 2.0, 3.0, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := NewVertexStore().Upsert(db, context.Background(), models.Vertex{ID: 1, X: 1, Y: 2, Z: 3})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVertexStoreGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT id, x, y, z, degree FROM vertices").
		WithArgs(models.VertexID(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "x", "y", "z", "degree"}))

	_, err := NewVertexStore().GetByID(db, context.Background(), 99)

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestVertexStoreCount(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM vertices").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := NewVertexStore().Count(db, context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestEdgeStoreRoundTripProvenance(t *testing.T) {
	db, mock := newMockDB(t)
	rows := sqlmock.NewRows([]string{
		"id", "source_vertex_id", "target_vertex_id", "geometry", "length_km", "elevation_gain_m",
		"elevation_loss_m", "trail_id", "name", "provenance_kind", "provenance_trail_id",
		"provenance_connector_id", "provenance_chain_vertices", "provenance_chain_edges",
	}).AddRow(
		models.EdgeID(5), models.VertexID(1), models.VertexID(2), []byte(`[{"x":0,"y":0,"z":0}]`),
		1.2, 0.0, 0.0, nil, "Spur Trail", int(models.ProvenanceMergedChain), nil, nil, "1,2,3", "10,11",
	)
	mock.ExpectQuery("SELECT id, source_vertex_id").WithArgs(models.EdgeID(5)).WillReturnRows(rows)

	edge, err := NewEdgeStore().GetByID(db, context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, models.ProvenanceMergedChain, edge.Provenance.Kind)
	assert.Equal(t, []models.VertexID{1, 2, 3}, edge.Provenance.ChainVertices)
	assert.Equal(t, []models.EdgeID{10, 11}, edge.Provenance.ChainEdges)
}

func TestEdgeStoreDeleteAll(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM edges").WillReturnResult(sqlmock.NewResult(0, 3))

	err := NewEdgeStore().DeleteAll(db, context.Background())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
