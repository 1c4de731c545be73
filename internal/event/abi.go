package event

// REC市场合约ABI定义（简化版, 只保留监控所需事件与桥接调用）
const MarketplaceABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "operator", "type": "address"},
			{"indexed": true, "name": "from", "type": "address"},
			{"indexed": true, "name": "to", "type": "address"},
			{"indexed": false, "name": "id", "type": "uint256"},
			{"indexed": false, "name": "value", "type": "uint256"}
		],
		"name": "TransferSingle",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "owner", "type": "address"},
			{"indexed": true, "name": "tokenId", "type": "uint256"},
			{"indexed": true, "name": "amount", "type": "uint256"}
		],
		"name": "Redeem",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "seller", "type": "address"},
			{"indexed": true, "name": "tokenId", "type": "uint256"},
			{"indexed": false, "name": "tokenAmount", "type": "uint256"},
			{"indexed": false, "name": "price", "type": "uint256"}
		],
		"name": "TokenListed",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "buyer", "type": "address"},
			{"indexed": true, "name": "seller", "type": "address"},
			{"indexed": true, "name": "tokenId", "type": "uint256"},
			{"indexed": false, "name": "tokenAmount", "type": "uint256"},
			{"indexed": false, "name": "price", "type": "uint256"}
		],
		"name": "TokenBought",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "role", "type": "bytes32"},
			{"indexed": true, "name": "account", "type": "address"},
			{"indexed": true, "name": "sender", "type": "address"}
		],
		"name": "RoleGranted",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "role", "type": "bytes32"},
			{"indexed": true, "name": "account", "type": "address"},
			{"indexed": true, "name": "sender", "type": "address"}
		],
		"name": "RoleRevoked",
		"type": "event"
	},
	{
		"inputs": [{"name": "id", "type": "uint256"}],
		"name": "uri",
		"outputs": [{"name": "", "type": "string"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "cid", "type": "string"},
			{"name": "amount", "type": "uint256"},
			{"name": "recipients", "type": "address[]"},
			{"name": "amounts", "type": "uint256[]"},
			{"name": "redeemed", "type": "bool[]"}
		],
		"name": "mintAndAllocate",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// 副链证书登记合约ABI定义（简化版）
const RegistryABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "operator", "type": "address"},
			{"indexed": true, "name": "from", "type": "address"},
			{"indexed": true, "name": "to", "type": "address"},
			{"indexed": false, "name": "id", "type": "uint256"},
			{"indexed": false, "name": "value", "type": "uint256"}
		],
		"name": "TransferSingle",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "_claimIssuer", "type": "address"},
			{"indexed": true, "name": "_claimSubject", "type": "address"},
			{"indexed": true, "name": "_topic", "type": "uint256"},
			{"indexed": false, "name": "_id", "type": "uint256"},
			{"indexed": false, "name": "_value", "type": "uint256"},
			{"indexed": false, "name": "_claimData", "type": "bytes"}
		],
		"name": "ClaimSingle",
		"type": "event"
	}
]`

// 副链批次工厂合约ABI定义（简化版）
const BatchFactoryABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "batchId", "type": "bytes32"},
			{"indexed": false, "name": "certificateIds", "type": "uint256[]"}
		],
		"name": "CertificateBatchMinted",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "batchId", "type": "bytes32"},
			{"indexed": false, "name": "redemptionStatement", "type": "string"},
			{"indexed": false, "name": "storagePointer", "type": "string"}
		],
		"name": "RedemptionStatementSet",
		"type": "event"
	}
]`

// 副链协议工厂合约ABI定义（简化版）
const AgreementFactoryABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "agreementAddress", "type": "address"},
			{"indexed": true, "name": "buyer", "type": "address"},
			{"indexed": true, "name": "seller", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "AgreementSigned",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "agreementAddress", "type": "address"},
			{"indexed": true, "name": "certificateId", "type": "uint256"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "AgreementFilled",
		"type": "event"
	}
]`
