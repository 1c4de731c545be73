package event

import (
	"github.com/polyphene/recs-monorepo/internal/model"
)

// Data 已解码事件载荷, 封闭集合
// 按具体Go类型显式区分事件种类, 不做字段探测
type Data interface {
	EventType() model.EventType
}

// MintData 主链/副链token铸造(from为零地址的TransferSingle)
type MintData struct {
	Operator string `json:"operator"`
	From     string `json:"from"`
	To       string `json:"to"`
	Id       string `json:"id"`
	Value    string `json:"value"`
}

func (MintData) EventType() model.EventType { return model.EventTypeMint }

// TransferData token转移
type TransferData struct {
	Operator string `json:"operator"`
	From     string `json:"from"`
	To       string `json:"to"`
	Id       string `json:"id"`
	Value    string `json:"value"`
}

func (TransferData) EventType() model.EventType { return model.EventTypeTransfer }

// RedeemData token赎回
type RedeemData struct {
	Owner   string `json:"owner"`
	TokenId string `json:"tokenId"`
	Amount  string `json:"amount"`
}

func (RedeemData) EventType() model.EventType { return model.EventTypeRedeem }

// ListData 市场挂单
type ListData struct {
	Seller      string `json:"seller"`
	TokenId     string `json:"tokenId"`
	TokenAmount string `json:"tokenAmount"`
	Price       string `json:"price"`
}

func (ListData) EventType() model.EventType { return model.EventTypeList }

// BuyData 市场成交
type BuyData struct {
	Buyer       string `json:"buyer"`
	Seller      string `json:"seller"`
	TokenId     string `json:"tokenId"`
	TokenAmount string `json:"tokenAmount"`
	Price       string `json:"price"`
}

func (BuyData) EventType() model.EventType { return model.EventTypeBuy }

// GrantRoleData 授予角色
type GrantRoleData struct {
	Role    string `json:"role"`
	Account string `json:"account"`
	Sender  string `json:"sender"`
}

func (GrantRoleData) EventType() model.EventType { return model.EventTypeGrantRole }

// RevokeRoleData 撤销角色
type RevokeRoleData struct {
	Role    string `json:"role"`
	Account string `json:"account"`
	Sender  string `json:"sender"`
}

func (RevokeRoleData) EventType() model.EventType { return model.EventTypeRevokeRole }

// BatchMintedData 副链证书批次铸造
type BatchMintedData struct {
	BatchId        string   `json:"batchId"`
	CertificateIds []string `json:"certificateIds"`
}

func (BatchMintedData) EventType() model.EventType { return model.EventTypeBatchMinted }

// RedemptionSetData 副链批次赎回声明
type RedemptionSetData struct {
	BatchId             string `json:"batchId"`
	RedemptionStatement string `json:"redemptionStatement"`
	StoragePointer      string `json:"storagePointer"`
}

func (RedemptionSetData) EventType() model.EventType { return model.EventTypeRedemptionSet }

// ClaimSingleData 副链证书认领
type ClaimSingleData struct {
	ClaimIssuer  string `json:"claimIssuer"`
	ClaimSubject string `json:"claimSubject"`
	Topic        string `json:"topic"`
	Id           string `json:"id"`
	Value        string `json:"value"`
	ClaimData    string `json:"claimData"`
}

func (ClaimSingleData) EventType() model.EventType { return model.EventTypeClaimSingle }

// AgreementSignedData 副链购电协议签署
type AgreementSignedData struct {
	AgreementAddress string `json:"agreementAddress"`
	Buyer            string `json:"buyer"`
	Seller           string `json:"seller"`
	Amount           string `json:"amount"`
}

func (AgreementSignedData) EventType() model.EventType { return model.EventTypeAgreementSigned }

// AgreementFilledData 副链购电协议履约
type AgreementFilledData struct {
	AgreementAddress string `json:"agreementAddress"`
	CertificateId    string `json:"certificateId"`
	Amount           string `json:"amount"`
}

func (AgreementFilledData) EventType() model.EventType { return model.EventTypeAgreementFilled }

// Decoded 一条已解码的链上日志及其定位信息
type Decoded struct {
	Chain           model.Chain
	BlockHeight     uint64
	TransactionHash string
	LogIndex        int
	Data            Data
}

// TokenId 事件涉及的token id, 角色/协议类事件为nil
func (d *Decoded) TokenId() *string {
	switch data := d.Data.(type) {
	case *MintData:
		return &data.Id
	case *TransferData:
		return &data.Id
	case *RedeemData:
		return &data.TokenId
	case *ListData:
		return &data.TokenId
	case *BuyData:
		return &data.TokenId
	case *ClaimSingleData:
		return &data.Id
	default:
		return nil
	}
}
