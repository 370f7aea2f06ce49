package request

// SignRequest 多签流程需要 MultisigPublicKey
type SignRequest struct {
	Password          string `json:"password" binding:"required"`
	MultisigPublicKey string `json:"multisig_public_key" binding:"omitempty,hexadecimal"`
}

type CosignRequest struct {
	Password string   `json:"password" binding:"required"`
	Hashes   []string `json:"hashes" binding:"required,min=1,dive,len=64,hexadecimal"`
}
