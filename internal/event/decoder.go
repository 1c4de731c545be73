package event

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/polyphene/recs-monorepo/internal/model"
)

// Decoder 纯解码器, 把原始日志映射到封闭事件集合, 不触碰任何状态
type Decoder struct {
	abi   abi.ABI
	chain model.Chain
}

// NewDecoder 创建解码器
func NewDecoder(abiJSON string, chain model.Chain) (*Decoder, error) {
	parsedABI, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	return &Decoder{abi: parsedABI, chain: chain}, nil
}

// Decode 解析单条日志, 未知事件返回(nil, nil)直接跳过
func (d *Decoder) Decode(l types.Log) (*Decoded, error) {
	if len(l.Topics) == 0 {
		return nil, nil
	}

	ev, err := d.abi.EventByID(l.Topics[0])
	if err != nil {
		// 不在ABI里的事件与我们无关
		return nil, nil
	}

	var data Data
	switch ev.Name {
	case "TransferSingle":
		data, err = d.decodeTransferSingle(ev, l)
	case "Redeem":
		data, err = d.decodeRedeem(l)
	case "TokenListed":
		data, err = d.decodeTokenListed(ev, l)
	case "TokenBought":
		data, err = d.decodeTokenBought(ev, l)
	case "RoleGranted", "RoleRevoked":
		data, err = d.decodeRoleChange(ev.Name, l)
	case "CertificateBatchMinted":
		data, err = d.decodeBatchMinted(ev, l)
	case "RedemptionStatementSet":
		data, err = d.decodeRedemptionSet(ev, l)
	case "ClaimSingle":
		data, err = d.decodeClaimSingle(ev, l)
	case "AgreementSigned":
		data, err = d.decodeAgreementSigned(ev, l)
	case "AgreementFilled":
		data, err = d.decodeAgreementFilled(ev, l)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &Decoded{
		Chain:           d.chain,
		BlockHeight:     l.BlockNumber,
		TransactionHash: l.TxHash.Hex(),
		LogIndex:        int(l.Index),
		Data:            data,
	}, nil
}

// decodeTransferSingle 解析转移事件, from为零地址时视为铸造
func (d *Decoder) decodeTransferSingle(ev *abi.Event, l types.Log) (Data, error) {
	if len(l.Topics) < 4 {
		return nil, fmt.Errorf("invalid TransferSingle event: insufficient topics")
	}

	vals, err := ev.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack TransferSingle data: %w", err)
	}

	operator := common.BytesToAddress(l.Topics[1].Bytes())
	from := common.BytesToAddress(l.Topics[2].Bytes())
	to := common.BytesToAddress(l.Topics[3].Bytes())
	id := vals[0].(*big.Int).String()
	value := vals[1].(*big.Int).String()

	if from == (common.Address{}) {
		return &MintData{
			Operator: operator.Hex(),
			From:     from.Hex(),
			To:       to.Hex(),
			Id:       id,
			Value:    value,
		}, nil
	}

	return &TransferData{
		Operator: operator.Hex(),
		From:     from.Hex(),
		To:       to.Hex(),
		Id:       id,
		Value:    value,
	}, nil
}

// decodeRedeem 解析赎回事件, 三个参数全部为索引参数
func (d *Decoder) decodeRedeem(l types.Log) (Data, error) {
	if len(l.Topics) < 4 {
		return nil, fmt.Errorf("invalid Redeem event: insufficient topics")
	}

	return &RedeemData{
		Owner:   common.BytesToAddress(l.Topics[1].Bytes()).Hex(),
		TokenId: new(big.Int).SetBytes(l.Topics[2].Bytes()).String(),
		Amount:  new(big.Int).SetBytes(l.Topics[3].Bytes()).String(),
	}, nil
}

// decodeTokenListed 解析挂单事件
func (d *Decoder) decodeTokenListed(ev *abi.Event, l types.Log) (Data, error) {
	if len(l.Topics) < 3 {
		return nil, fmt.Errorf("invalid TokenListed event: insufficient topics")
	}

	vals, err := ev.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack TokenListed data: %w", err)
	}

	return &ListData{
		Seller:      common.BytesToAddress(l.Topics[1].Bytes()).Hex(),
		TokenId:     new(big.Int).SetBytes(l.Topics[2].Bytes()).String(),
		TokenAmount: vals[0].(*big.Int).String(),
		Price:       vals[1].(*big.Int).String(),
	}, nil
}

// decodeTokenBought 解析成交事件
func (d *Decoder) decodeTokenBought(ev *abi.Event, l types.Log) (Data, error) {
	if len(l.Topics) < 4 {
		return nil, fmt.Errorf("invalid TokenBought event: insufficient topics")
	}

	vals, err := ev.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack TokenBought data: %w", err)
	}

	return &BuyData{
		Buyer:       common.BytesToAddress(l.Topics[1].Bytes()).Hex(),
		Seller:      common.BytesToAddress(l.Topics[2].Bytes()).Hex(),
		TokenId:     new(big.Int).SetBytes(l.Topics[3].Bytes()).String(),
		TokenAmount: vals[0].(*big.Int).String(),
		Price:       vals[1].(*big.Int).String(),
	}, nil
}

// decodeRoleChange 解析角色授予/撤销事件
func (d *Decoder) decodeRoleChange(name string, l types.Log) (Data, error) {
	if len(l.Topics) < 4 {
		return nil, fmt.Errorf("invalid %s event: insufficient topics", name)
	}

	role := l.Topics[1].Hex()
	account := common.BytesToAddress(l.Topics[2].Bytes()).Hex()
	sender := common.BytesToAddress(l.Topics[3].Bytes()).Hex()

	if name == "RoleGranted" {
		return &GrantRoleData{Role: role, Account: account, Sender: sender}, nil
	}
	return &RevokeRoleData{Role: role, Account: account, Sender: sender}, nil
}

// decodeBatchMinted 解析证书批次铸造事件
func (d *Decoder) decodeBatchMinted(ev *abi.Event, l types.Log) (Data, error) {
	if len(l.Topics) < 2 {
		return nil, fmt.Errorf("invalid CertificateBatchMinted event: insufficient topics")
	}

	vals, err := ev.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack CertificateBatchMinted data: %w", err)
	}

	rawIds := vals[0].([]*big.Int)
	certificateIds := make([]string, 0, len(rawIds))
	for _, id := range rawIds {
		certificateIds = append(certificateIds, id.String())
	}

	return &BatchMintedData{
		BatchId:        l.Topics[1].Hex(),
		CertificateIds: certificateIds,
	}, nil
}

// decodeRedemptionSet 解析赎回声明事件
func (d *Decoder) decodeRedemptionSet(ev *abi.Event, l types.Log) (Data, error) {
	if len(l.Topics) < 2 {
		return nil, fmt.Errorf("invalid RedemptionStatementSet event: insufficient topics")
	}

	vals, err := ev.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack RedemptionStatementSet data: %w", err)
	}

	return &RedemptionSetData{
		BatchId:             l.Topics[1].Hex(),
		RedemptionStatement: vals[0].(string),
		StoragePointer:      vals[1].(string),
	}, nil
}

// decodeClaimSingle 解析证书认领事件
func (d *Decoder) decodeClaimSingle(ev *abi.Event, l types.Log) (Data, error) {
	if len(l.Topics) < 4 {
		return nil, fmt.Errorf("invalid ClaimSingle event: insufficient topics")
	}

	vals, err := ev.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack ClaimSingle data: %w", err)
	}

	return &ClaimSingleData{
		ClaimIssuer:  common.BytesToAddress(l.Topics[1].Bytes()).Hex(),
		ClaimSubject: common.BytesToAddress(l.Topics[2].Bytes()).Hex(),
		Topic:        new(big.Int).SetBytes(l.Topics[3].Bytes()).String(),
		Id:           vals[0].(*big.Int).String(),
		Value:        vals[1].(*big.Int).String(),
		ClaimData:    common.Bytes2Hex(vals[2].([]byte)),
	}, nil
}

// decodeAgreementSigned 解析协议签署事件
func (d *Decoder) decodeAgreementSigned(ev *abi.Event, l types.Log) (Data, error) {
	if len(l.Topics) < 4 {
		return nil, fmt.Errorf("invalid AgreementSigned event: insufficient topics")
	}

	vals, err := ev.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack AgreementSigned data: %w", err)
	}

	return &AgreementSignedData{
		AgreementAddress: common.BytesToAddress(l.Topics[1].Bytes()).Hex(),
		Buyer:            common.BytesToAddress(l.Topics[2].Bytes()).Hex(),
		Seller:           common.BytesToAddress(l.Topics[3].Bytes()).Hex(),
		Amount:           vals[0].(*big.Int).String(),
	}, nil
}

// decodeAgreementFilled 解析协议履约事件
func (d *Decoder) decodeAgreementFilled(ev *abi.Event, l types.Log) (Data, error) {
	if len(l.Topics) < 3 {
		return nil, fmt.Errorf("invalid AgreementFilled event: insufficient topics")
	}

	vals, err := ev.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack AgreementFilled data: %w", err)
	}

	return &AgreementFilledData{
		AgreementAddress: common.BytesToAddress(l.Topics[1].Bytes()).Hex(),
		CertificateId:    new(big.Int).SetBytes(l.Topics[2].Bytes()).String(),
		Amount:           vals[0].(*big.Int).String(),
	}, nil
}
