package checkpoint

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/stretchr/testify/suite"

	"github.com/quantex-lab/snapex/internal/logger"
	"github.com/quantex-lab/snapex/internal/types"
)

type CheckpointStoreTestSuite struct {
	suite.Suite
	db    *sql.DB
	store *Store
}

func TestCheckpointStoreSuite(t *testing.T) {
	suite.Run(t, new(CheckpointStoreTestSuite))
}

func (suite *CheckpointStoreTestSuite) SetupTest() {
	db, err := sql.Open("duckdb", filepath.Join(suite.T().TempDir(), "checkpoints.duckdb"))
	suite.Require().NoError(err)
	suite.db = db

	store, err := NewStore(db, logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.store = store
}

func (suite *CheckpointStoreTestSuite) TearDownTest() {
	suite.Require().NoError(suite.db.Close())
}

func (suite *CheckpointStoreTestSuite) TestGetUnknownPairIsNone() {
	got, err := suite.store.Get("snap-a", types.DatasetDailyBars)
	suite.Require().NoError(err)
	suite.True(got.IsNone())
}

func (suite *CheckpointStoreTestSuite) TestAdvanceThenGet() {
	ts := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	suite.Require().NoError(suite.store.Advance("snap-a", types.DatasetDailyBars, ts))

	got, err := suite.store.Get("snap-a", types.DatasetDailyBars)
	suite.Require().NoError(err)

	last, err := got.Take()
	suite.Require().NoError(err)
	suite.True(last.Equal(ts))
}

func (suite *CheckpointStoreTestSuite) TestAdvanceUpsertsPerPair() {
	first := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	second := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	suite.Require().NoError(suite.store.Advance("snap-a", types.DatasetDailyBars, first))
	suite.Require().NoError(suite.store.Advance("snap-a", types.DatasetDailyBars, second))

	got, err := suite.store.Get("snap-a", types.DatasetDailyBars)
	suite.Require().NoError(err)
	last, err := got.Take()
	suite.Require().NoError(err)
	suite.True(last.Equal(second))
}

func (suite *CheckpointStoreTestSuite) TestPairsAreIndependent() {
	barsTS := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	factorTS := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	suite.Require().NoError(suite.store.Advance("snap-a", types.DatasetDailyBars, barsTS))
	suite.Require().NoError(suite.store.Advance("snap-a", types.DatasetFactorTable, factorTS))
	suite.Require().NoError(suite.store.Advance("snap-b", types.DatasetDailyBars, barsTS.AddDate(0, 0, 1)))

	got, err := suite.store.Get("snap-a", types.DatasetFactorTable)
	suite.Require().NoError(err)
	last, err := got.Take()
	suite.Require().NoError(err)
	suite.True(last.Equal(factorTS))

	got, err = suite.store.Get("snap-a", types.DatasetDailyBars)
	suite.Require().NoError(err)
	last, err = got.Take()
	suite.Require().NoError(err)
	suite.True(last.Equal(barsTS))
}

func (suite *CheckpointStoreTestSuite) TestNewStoreIsIdempotent() {
	// A second store over the same connection must tolerate the existing table.
	again, err := NewStore(suite.db, logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.NotNil(again)
}
