package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/polyphene/recs-monorepo/internal/database"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"github.com/polyphene/recs-monorepo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeSubmitter 记录提交顺序, 可注入失败
type fakeSubmitter struct {
	submitted []model.MintArgs
	failCids  map[string]bool
	reverted  map[string]bool
}

func (f *fakeSubmitter) Submit(_ context.Context, args model.MintArgs) (string, bool, error) {
	if f.failCids[args.Cid] {
		return "", false, errors.New("rpc timeout")
	}
	f.submitted = append(f.submitted, args)
	return "0xhash-" + args.Cid, !f.reverted[args.Cid], nil
}

func setupJobDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func enqueueMint(t *testing.T, db *gorm.DB, cid string) {
	t.Helper()

	rawArgs, err := json.Marshal(model.MintArgs{
		Cid: cid, Amount: "100",
		Recipients: []string{"0xalice"}, Amounts: []string{"100"}, Redeemed: []bool{true},
	})
	require.NoError(t, err)

	n, err := logic.NewTransactionLogic(db).Enqueue([]model.TransactionModel{{
		TransactionType: model.TransactionTypeMint,
		Cid:             cid,
		RawArgs:         string(rawArgs),
	}})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestBridgeJobSubmitsInOrder(t *testing.T) {
	db := setupJobDB(t)
	enqueueMint(t, db, "cid-1")
	enqueueMint(t, db, "cid-2")

	submitter := &fakeSubmitter{}
	job := NewBridgeJob(db, submitter)
	job.Run(context.Background())

	require.Len(t, submitter.submitted, 2)
	assert.Equal(t, "cid-1", submitter.submitted[0].Cid)
	assert.Equal(t, "cid-2", submitter.submitted[1].Cid)

	pending, err := logic.NewTransactionLogic(db).NextPending()
	require.NoError(t, err)
	assert.Nil(t, pending)

	var confirmed model.TransactionModel
	require.NoError(t, db.Where("cid = ?", "cid-1").First(&confirmed).Error)
	require.NotNil(t, confirmed.Hash)
	assert.Equal(t, "0xhash-cid-1", *confirmed.Hash)
	require.NotNil(t, confirmed.Success)
	assert.True(t, *confirmed.Success)
}

func TestBridgeJobStopsOnFailureAndRetries(t *testing.T) {
	db := setupJobDB(t)
	enqueueMint(t, db, "cid-1")
	enqueueMint(t, db, "cid-2")

	// 第一笔失败, 后面的不提交, 串行保证顺序
	submitter := &fakeSubmitter{failCids: map[string]bool{"cid-1": true}}
	job := NewBridgeJob(db, submitter)
	job.Run(context.Background())

	assert.Empty(t, submitter.submitted)

	pending, err := logic.NewTransactionLogic(db).NextPending()
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "cid-1", pending.Cid)

	// 故障恢复后下一轮从同一笔继续
	submitter.failCids = nil
	job.Run(context.Background())

	require.Len(t, submitter.submitted, 2)
	assert.Equal(t, "cid-1", submitter.submitted[0].Cid)
}

func TestBridgeJobRecordsRevertedExecution(t *testing.T) {
	db := setupJobDB(t)
	enqueueMint(t, db, "cid-1")

	// 交易上链但执行回滚, 记录结果后不再重试
	submitter := &fakeSubmitter{reverted: map[string]bool{"cid-1": true}}
	job := NewBridgeJob(db, submitter)
	job.Run(context.Background())

	pending, err := logic.NewTransactionLogic(db).NextPending()
	require.NoError(t, err)
	assert.Nil(t, pending)

	var confirmed model.TransactionModel
	require.NoError(t, db.Where("cid = ?", "cid-1").First(&confirmed).Error)
	require.NotNil(t, confirmed.Success)
	assert.False(t, *confirmed.Success)
}

func TestBridgeJobSkipsCorruptArgs(t *testing.T) {
	db := setupJobDB(t)

	n, err := logic.NewTransactionLogic(db).Enqueue([]model.TransactionModel{{
		TransactionType: model.TransactionTypeMint,
		Cid:             "cid-bad",
		RawArgs:         `{"not":"positional"}`,
	}})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	submitter := &fakeSubmitter{}
	job := NewBridgeJob(db, submitter)
	job.Run(context.Background())

	// 损坏的参数不提交, 留在队首等人工处理
	assert.Empty(t, submitter.submitted)
	pending, err := logic.NewTransactionLogic(db).NextPending()
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "cid-bad", pending.Cid)
}
