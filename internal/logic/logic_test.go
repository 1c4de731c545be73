package logic

import (
	"fmt"
	"testing"

	"github.com/polyphene/recs-monorepo/internal/database"
	"github.com/polyphene/recs-monorepo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

func sampleEvent(logIndex int) *model.EventModel {
	tokenId := "1"
	return &model.EventModel{
		Chain:           model.ChainFilecoin,
		TokenId:         &tokenId,
		EventType:       model.EventTypeMint,
		Data:            `{"to":"0xabc","value":"100"}`,
		BlockHeight:     "42",
		TransactionHash: "0xdeadbeef",
		LogIndex:        logIndex,
	}
}

func TestUpsertEventIdempotent(t *testing.T) {
	db := setupTestDB(t)
	eventLogic := NewEventLogic(db)

	require.NoError(t, eventLogic.UpsertEvent(sampleEvent(0)))

	// 同一条日志重复摄入, 不产生第二行
	replay := sampleEvent(0)
	replay.Data = `{"to":"0xabc","value":"100","replayed":true}`
	require.NoError(t, eventLogic.UpsertEvent(replay))

	var count int64
	require.NoError(t, db.Model(&model.EventModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var stored model.EventModel
	require.NoError(t, db.First(&stored).Error)
	assert.Contains(t, stored.Data, "replayed")
}

func TestUpsertEventDistinctLogIndex(t *testing.T) {
	db := setupTestDB(t)
	eventLogic := NewEventLogic(db)

	require.NoError(t, eventLogic.UpsertEvent(sampleEvent(0)))
	require.NoError(t, eventLogic.UpsertEvent(sampleEvent(1)))

	var count int64
	require.NoError(t, db.Model(&model.EventModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestCursorAdvanceMonotonic(t *testing.T) {
	db := setupTestDB(t)
	cursorLogic := NewCursorLogic(db)

	_, ok, err := cursorLogic.Get(model.ChainFilecoin)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cursorLogic.Advance(model.ChainFilecoin, 100))
	require.NoError(t, cursorLogic.Advance(model.ChainFilecoin, 105))

	// 落后的写入被忽略
	require.NoError(t, cursorLogic.Advance(model.ChainFilecoin, 90))

	height, ok, err := cursorLogic.Get(model.ChainFilecoin)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(105), height)
}

func TestCursorPerChain(t *testing.T) {
	db := setupTestDB(t)
	cursorLogic := NewCursorLogic(db)

	require.NoError(t, cursorLogic.Advance(model.ChainFilecoin, 10))
	require.NoError(t, cursorLogic.Advance(model.ChainEnergyWeb, 20))

	height, _, err := cursorLogic.Get(model.ChainFilecoin)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), height)

	height, _, err = cursorLogic.Get(model.ChainEnergyWeb)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), height)
}

func TestBalanceCreditDebit(t *testing.T) {
	db := setupTestDB(t)
	balanceLogic := NewBalanceLogic(db)

	require.NoError(t, balanceLogic.Credit("0xaaa", 1, "100"))
	require.NoError(t, balanceLogic.Debit("0xaaa", 1, "40"))
	require.NoError(t, balanceLogic.Credit("0xbbb", 1, "40"))

	balances, err := balanceLogic.GetByCollection(1)
	require.NoError(t, err)
	require.Len(t, balances, 2)

	byAddr := map[string]string{}
	for _, b := range balances {
		byAddr[b.UserAddress] = b.Amount
	}
	assert.Equal(t, "60", byAddr["0xaaa"])
	assert.Equal(t, "40", byAddr["0xbbb"])
}

func TestBalanceDebitInsufficient(t *testing.T) {
	db := setupTestDB(t)
	balanceLogic := NewBalanceLogic(db)

	require.NoError(t, balanceLogic.Credit("0xaaa", 1, "10"))
	assert.Error(t, balanceLogic.Debit("0xaaa", 1, "11"))
	assert.Error(t, balanceLogic.Debit("0xccc", 1, "1"))
}

func TestBalanceRedeemCapped(t *testing.T) {
	db := setupTestDB(t)
	balanceLogic := NewBalanceLogic(db)

	require.NoError(t, balanceLogic.Credit("0xaaa", 1, "100"))
	require.NoError(t, balanceLogic.Redeem("0xaaa", 1, "60"))
	require.NoError(t, balanceLogic.Redeem("0xaaa", 1, "40"))

	// 已赎回量不能超过持有量
	assert.Error(t, balanceLogic.Redeem("0xaaa", 1, "1"))

	balances, err := balanceLogic.GetByAddress("0xaaa")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "100", balances[0].Amount)
	assert.Equal(t, "100", balances[0].Redeemed)
}

func TestBalanceRejectsNegativeAmount(t *testing.T) {
	db := setupTestDB(t)
	balanceLogic := NewBalanceLogic(db)

	assert.Error(t, balanceLogic.Credit("0xaaa", 1, "-5"))
	assert.Error(t, balanceLogic.Credit("0xaaa", 1, "abc"))
}

func TestTransactionQueue(t *testing.T) {
	db := setupTestDB(t)
	transactionLogic := NewTransactionLogic(db)

	n, err := transactionLogic.Enqueue([]model.TransactionModel{
		{TransactionType: model.TransactionTypeMint, Cid: "cid-1", RawArgs: "[]"},
		{TransactionType: model.TransactionTypeMint, Cid: "cid-2", RawArgs: "[]"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// cid冲突跳过
	n, err = transactionLogic.Enqueue([]model.TransactionModel{
		{TransactionType: model.TransactionTypeMint, Cid: "cid-1", RawArgs: "[]"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	pending, err := transactionLogic.NextPending()
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "cid-1", pending.Cid)

	require.NoError(t, transactionLogic.MarkConfirmed(pending.Id, "0xhash1", true))

	pending, err = transactionLogic.NextPending()
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "cid-2", pending.Cid)

	require.NoError(t, transactionLogic.MarkConfirmed(pending.Id, "0xhash2", false))

	pending, err = transactionLogic.NextPending()
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestUserSetRoleFlag(t *testing.T) {
	db := setupTestDB(t)
	userLogic := NewUserLogic(db)

	require.NoError(t, userLogic.SetRoleFlag("0xaaa", "is_minter", true))
	require.NoError(t, userLogic.SetRoleFlag("0xaaa", "is_redeemer", true))
	// 重复授予幂等
	require.NoError(t, userLogic.SetRoleFlag("0xaaa", "is_minter", true))

	user, err := userLogic.GetByAddress("0xaaa")
	require.NoError(t, err)
	assert.True(t, user.IsMinter)
	assert.True(t, user.IsRedeemer)
	assert.False(t, user.IsAdmin)

	require.NoError(t, userLogic.SetRoleFlag("0xaaa", "is_minter", false))
	user, err = userLogic.GetByAddress("0xaaa")
	require.NoError(t, err)
	assert.False(t, user.IsMinter)
	assert.True(t, user.IsRedeemer)

	assert.Error(t, userLogic.SetRoleFlag("0xaaa", "is_owner", true))

	var count int64
	require.NoError(t, db.Model(&model.UserModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListingLifecycle(t *testing.T) {
	db := setupTestDB(t)
	listingLogic := NewListingLogic(db)

	require.NoError(t, listingLogic.CreateListing(&model.ListingModel{
		SellerAddress: "0xseller",
		CollectionId:  1,
		Amount:        "50",
		UnitPrice:     "3",
	}))

	open, err := listingLogic.GetOpenListings()
	require.NoError(t, err)
	require.Len(t, open, 1)

	require.NoError(t, listingLogic.CloseListing(1, "0xseller", "0xbuyer"))

	open, err = listingLogic.GetOpenListings()
	require.NoError(t, err)
	assert.Empty(t, open)

	// 没有未成交挂单时关闭报错
	assert.Error(t, listingLogic.CloseListing(1, "0xseller", "0xbuyer"))
}

func TestCollectionUpsertMinted(t *testing.T) {
	db := setupTestDB(t)
	collectionLogic := NewCollectionLogic(db)

	// 无预建集合时按token id创建
	first, err := collectionLogic.UpsertMinted("7", nil)
	require.NoError(t, err)
	require.NotNil(t, first.FilecoinTokenId)
	assert.Equal(t, "7", *first.FilecoinTokenId)

	// 重复mint事件复用同一集合
	again, err := collectionLogic.UpsertMinted("7", nil)
	require.NoError(t, err)
	assert.Equal(t, first.Id, again.Id)

	// 对账器预建的集合行由mint补上token id
	metadataLogic := NewMetadataLogic(db)
	require.NoError(t, metadataLogic.CreateIgnoreDuplicates(&model.MetadataModel{
		Cid: "cid-xyz", RedemptionStatement: "stmt", Volume: "100", CreatedBy: "0xbridge",
	}))
	metadata, err := metadataLogic.FindByCid("cid-xyz")
	require.NoError(t, err)
	require.NotNil(t, metadata)

	require.NoError(t, collectionLogic.CreateIgnoreDuplicates(&model.CollectionModel{
		MetadataId: &metadata.Id,
	}))

	linked, err := collectionLogic.UpsertMinted("8", &metadata.Id)
	require.NoError(t, err)
	require.NotNil(t, linked.FilecoinTokenId)
	assert.Equal(t, "8", *linked.FilecoinTokenId)

	// 已绑定的集合不能重绑其他token
	_, err = collectionLogic.UpsertMinted("9", &metadata.Id)
	assert.Error(t, err)
}

func TestMetadataMarkMinted(t *testing.T) {
	db := setupTestDB(t)
	metadataLogic := NewMetadataLogic(db)

	require.NoError(t, metadataLogic.CreateIgnoreDuplicates(&model.MetadataModel{
		Cid: "cid-1", RedemptionStatement: "stmt", Volume: "10", CreatedBy: "0xbridge",
	}))
	// cid冲突跳过
	require.NoError(t, metadataLogic.CreateIgnoreDuplicates(&model.MetadataModel{
		Cid: "cid-1", RedemptionStatement: "other", Volume: "99", CreatedBy: "0xother",
	}))

	metadata, err := metadataLogic.FindByCid("cid-1")
	require.NoError(t, err)
	require.NotNil(t, metadata)
	assert.Equal(t, "stmt", metadata.RedemptionStatement)
	assert.False(t, metadata.Minted)

	require.NoError(t, metadataLogic.MarkMinted("cid-1"))
	metadata, err = metadataLogic.FindByCid("cid-1")
	require.NoError(t, err)
	assert.True(t, metadata.Minted)

	missing, err := metadataLogic.FindByCid("cid-unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
