package public

import "github.com/ethereum/go-ethereum/common/hexutil"

// NewWallet is what a client sends to create a wallet.
type NewWallet struct {
	Password string `json:"password" validate:"required"`
}

// NewTransaction is what a client sends to move funds out of a wallet.
type NewTransaction struct {
	FromAddress   hexutil.Bytes `json:"fromAddress" validate:"required"`
	ToAddress     hexutil.Bytes `json:"toAddress" validate:"required"`
	Amount        uint64        `json:"amount" validate:"required,gt=0"`
	ChangeAddress hexutil.Bytes `json:"changeAddress" validate:"required"`
}

// Mine is what a client sends to mine a block.
type Mine struct {
	RewardAddress hexutil.Bytes `json:"rewardAddress" validate:"required"`
}

// address is returned when an address is generated.
type address struct {
	Address hexutil.Bytes `json:"address"`
}

// balance is returned for balance queries.
type balance struct {
	Address hexutil.Bytes `json:"address"`
	Balance uint64        `json:"balance"`
}

// confirmations is returned for confirmation queries.
type confirmations struct {
	ID            string `json:"id"`
	Confirmations int    `json:"confirmations"`
}
