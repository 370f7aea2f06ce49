package request

import "encoding/json"

// StageOptionsRequest 开始一次签名流程
type StageOptionsRequest struct {
	IsAggregate bool `json:"is_aggregate"`
	IsMultisig  bool `json:"is_multisig"`
}

// StageRequest Form 按 Type 解析为对应的交易表单
type StageRequest struct {
	Type string          `json:"type" binding:"required,oneof=transfer mosaic_definition mosaic_supply_change namespace_registration alias multisig_modification metadata"`
	Form json.RawMessage `json:"form" binding:"required"`
}

type MaxFeeRequest struct {
	Index  int    `json:"index" binding:"min=0"`
	MaxFee uint64 `json:"max_fee" binding:"required"`
}
