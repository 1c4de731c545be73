package event

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/polyphene/recs-monorepo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addrOperator = common.HexToAddress("0x1111111111111111111111111111111111111111")
	addrAlice    = common.HexToAddress("0x2222222222222222222222222222222222222222")
	addrBob      = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func addrTopic(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func uintTopic(v int64) common.Hash {
	return common.BigToHash(big.NewInt(v))
}

// buildLog 用ABI自身编码非索引参数, 保证测试日志和链上格式一致
func buildLog(t *testing.T, abiJSON, eventName string, topics []common.Hash, args ...interface{}) types.Log {
	t.Helper()

	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	require.NoError(t, err)
	ev, ok := parsed.Events[eventName]
	require.True(t, ok)

	data, err := ev.Inputs.NonIndexed().Pack(args...)
	require.NoError(t, err)

	return types.Log{
		Topics:      append([]common.Hash{ev.ID}, topics...),
		Data:        data,
		BlockNumber: 42,
		TxHash:      common.HexToHash("0xabc"),
		Index:       3,
	}
}

func newMarketplaceDecoder(t *testing.T) *Decoder {
	t.Helper()
	d, err := NewDecoder(MarketplaceABI, model.ChainFilecoin)
	require.NoError(t, err)
	return d
}

func TestDecodeTransferSingleMint(t *testing.T) {
	d := newMarketplaceDecoder(t)

	l := buildLog(t, MarketplaceABI, "TransferSingle",
		[]common.Hash{addrTopic(addrOperator), addrTopic(common.Address{}), addrTopic(addrAlice)},
		big.NewInt(7), big.NewInt(100))

	decoded, err := d.Decode(l)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	// from为零地址视为铸造
	mint, ok := decoded.Data.(*MintData)
	require.True(t, ok)
	assert.Equal(t, addrAlice.Hex(), mint.To)
	assert.Equal(t, "7", mint.Id)
	assert.Equal(t, "100", mint.Value)
	assert.Equal(t, model.EventTypeMint, decoded.Data.EventType())

	assert.Equal(t, model.ChainFilecoin, decoded.Chain)
	assert.Equal(t, uint64(42), decoded.BlockHeight)
	assert.Equal(t, 3, decoded.LogIndex)
	require.NotNil(t, decoded.TokenId())
	assert.Equal(t, "7", *decoded.TokenId())
}

func TestDecodeTransferSingleTransfer(t *testing.T) {
	d := newMarketplaceDecoder(t)

	l := buildLog(t, MarketplaceABI, "TransferSingle",
		[]common.Hash{addrTopic(addrOperator), addrTopic(addrAlice), addrTopic(addrBob)},
		big.NewInt(7), big.NewInt(40))

	decoded, err := d.Decode(l)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	transfer, ok := decoded.Data.(*TransferData)
	require.True(t, ok)
	assert.Equal(t, addrAlice.Hex(), transfer.From)
	assert.Equal(t, addrBob.Hex(), transfer.To)
	assert.Equal(t, "40", transfer.Value)
}

func TestDecodeRedeem(t *testing.T) {
	d := newMarketplaceDecoder(t)

	// Redeem三个参数全是索引参数, data为空
	parsed, err := abi.JSON(strings.NewReader(MarketplaceABI))
	require.NoError(t, err)
	l := types.Log{
		Topics: []common.Hash{
			parsed.Events["Redeem"].ID,
			addrTopic(addrAlice),
			uintTopic(7),
			uintTopic(30),
		},
		BlockNumber: 50,
		TxHash:      common.HexToHash("0xdef"),
	}

	decoded, err := d.Decode(l)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	redeem, ok := decoded.Data.(*RedeemData)
	require.True(t, ok)
	assert.Equal(t, addrAlice.Hex(), redeem.Owner)
	assert.Equal(t, "7", redeem.TokenId)
	assert.Equal(t, "30", redeem.Amount)
}

func TestDecodeTokenListedAndBought(t *testing.T) {
	d := newMarketplaceDecoder(t)

	listed := buildLog(t, MarketplaceABI, "TokenListed",
		[]common.Hash{addrTopic(addrAlice), uintTopic(7)},
		big.NewInt(50), big.NewInt(3))
	decoded, err := d.Decode(listed)
	require.NoError(t, err)
	list, ok := decoded.Data.(*ListData)
	require.True(t, ok)
	assert.Equal(t, addrAlice.Hex(), list.Seller)
	assert.Equal(t, "50", list.TokenAmount)
	assert.Equal(t, "3", list.Price)

	bought := buildLog(t, MarketplaceABI, "TokenBought",
		[]common.Hash{addrTopic(addrBob), addrTopic(addrAlice), uintTopic(7)},
		big.NewInt(50), big.NewInt(3))
	decoded, err = d.Decode(bought)
	require.NoError(t, err)
	buy, ok := decoded.Data.(*BuyData)
	require.True(t, ok)
	assert.Equal(t, addrBob.Hex(), buy.Buyer)
	assert.Equal(t, addrAlice.Hex(), buy.Seller)
	assert.Equal(t, "7", buy.TokenId)
}

func TestDecodeRoleEvents(t *testing.T) {
	d := newMarketplaceDecoder(t)
	roles := NewRoles()

	parsed, err := abi.JSON(strings.NewReader(MarketplaceABI))
	require.NoError(t, err)

	granted := types.Log{Topics: []common.Hash{
		parsed.Events["RoleGranted"].ID, roles.Minter, addrTopic(addrAlice), addrTopic(addrOperator),
	}}
	decoded, err := d.Decode(granted)
	require.NoError(t, err)
	grant, ok := decoded.Data.(*GrantRoleData)
	require.True(t, ok)
	assert.Equal(t, roles.Minter.Hex(), grant.Role)
	assert.Equal(t, addrAlice.Hex(), grant.Account)
	assert.Nil(t, decoded.TokenId())

	revoked := types.Log{Topics: []common.Hash{
		parsed.Events["RoleRevoked"].ID, roles.Minter, addrTopic(addrAlice), addrTopic(addrOperator),
	}}
	decoded, err = d.Decode(revoked)
	require.NoError(t, err)
	_, ok = decoded.Data.(*RevokeRoleData)
	require.True(t, ok)
}

func TestDecodeBatchFactoryEvents(t *testing.T) {
	d, err := NewDecoder(BatchFactoryABI, model.ChainEnergyWeb)
	require.NoError(t, err)

	batchId := common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000aa")

	minted := buildLog(t, BatchFactoryABI, "CertificateBatchMinted",
		[]common.Hash{batchId},
		[]*big.Int{big.NewInt(11), big.NewInt(12)})
	decoded, err := d.Decode(minted)
	require.NoError(t, err)
	batch, ok := decoded.Data.(*BatchMintedData)
	require.True(t, ok)
	assert.Equal(t, batchId.Hex(), batch.BatchId)
	assert.Equal(t, []string{"11", "12"}, batch.CertificateIds)
	assert.Equal(t, model.ChainEnergyWeb, decoded.Chain)

	set := buildLog(t, BatchFactoryABI, "RedemptionStatementSet",
		[]common.Hash{batchId},
		"statement-cid", "s3://bucket/statement.pdf")
	decoded, err = d.Decode(set)
	require.NoError(t, err)
	statement, ok := decoded.Data.(*RedemptionSetData)
	require.True(t, ok)
	assert.Equal(t, "statement-cid", statement.RedemptionStatement)
	assert.Equal(t, "s3://bucket/statement.pdf", statement.StoragePointer)
}

func TestDecodeClaimSingle(t *testing.T) {
	d, err := NewDecoder(RegistryABI, model.ChainEnergyWeb)
	require.NoError(t, err)

	l := buildLog(t, RegistryABI, "ClaimSingle",
		[]common.Hash{addrTopic(addrOperator), addrTopic(addrAlice), uintTopic(1)},
		big.NewInt(11), big.NewInt(25), []byte{0xca, 0xfe})
	decoded, err := d.Decode(l)
	require.NoError(t, err)

	claim, ok := decoded.Data.(*ClaimSingleData)
	require.True(t, ok)
	assert.Equal(t, addrAlice.Hex(), claim.ClaimSubject)
	assert.Equal(t, "11", claim.Id)
	assert.Equal(t, "25", claim.Value)
	assert.Equal(t, "cafe", claim.ClaimData)
}

func TestDecodeIgnoresForeignLogs(t *testing.T) {
	d := newMarketplaceDecoder(t)

	// 无topic
	decoded, err := d.Decode(types.Log{})
	require.NoError(t, err)
	assert.Nil(t, decoded)

	// 不在ABI里的事件
	decoded, err = d.Decode(types.Log{Topics: []common.Hash{common.HexToHash("0x1234")}})
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeTruncatedTopics(t *testing.T) {
	d := newMarketplaceDecoder(t)

	parsed, err := abi.JSON(strings.NewReader(MarketplaceABI))
	require.NoError(t, err)

	_, err = d.Decode(types.Log{Topics: []common.Hash{
		parsed.Events["TransferSingle"].ID, addrTopic(addrOperator),
	}})
	assert.Error(t, err)
}
