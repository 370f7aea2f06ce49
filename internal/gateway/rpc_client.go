package gateway

import (
	"context"
	"fmt"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/errno"

	"github.com/ethereum/go-ethereum/rpc"
)

// Client 基于 JSON-RPC 的 Gateway 与 AccountReader 实现, 同时支持 http 与 ws
type Client struct {
	rpc *rpc.Client
}

func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", errno.ErrGateway, url, err)
	}
	return NewClient(c), nil
}

func NewClient(c *rpc.Client) *Client {
	return &Client{rpc: c}
}

func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		return fmt.Errorf("%w: %s: %w", errno.ErrGateway, method, err)
	}
	return nil
}

func (c *Client) Announce(ctx context.Context, tx *model.SignedTransaction) error {
	return c.call(ctx, nil, "transaction_announce", tx)
}

func (c *Client) AnnounceAggregateBonded(ctx context.Context, tx *model.SignedTransaction) error {
	return c.call(ctx, nil, "transaction_announcePartial", tx)
}

func (c *Client) AnnounceCosignature(ctx context.Context, cosig *model.CosignatureSignedTransaction) error {
	return c.call(ctx, nil, "transaction_announceCosignature", cosig)
}

func (c *Client) TransactionStatus(ctx context.Context, hash string) (*model.TransactionStatus, error) {
	var status model.TransactionStatus
	if err := c.call(ctx, &status, "transaction_status", hash); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) AccountInfo(ctx context.Context, address string) (*model.AccountInfo, error) {
	var info model.AccountInfo
	if err := c.call(ctx, &info, "account_info", address); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) MultisigInfo(ctx context.Context, address string) (*model.MultisigInfo, error) {
	var info model.MultisigInfo
	if err := c.call(ctx, &info, "account_multisig", address); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) OwnedMosaics(ctx context.Context, address string) ([]model.MosaicInfo, error) {
	var mosaics []model.MosaicInfo
	err := c.call(ctx, &mosaics, "mosaic_ownedBy", address)
	return mosaics, err
}

func (c *Client) OwnedNamespaces(ctx context.Context, address string) ([]model.NamespaceInfo, error) {
	var namespaces []model.NamespaceInfo
	err := c.call(ctx, &namespaces, "namespace_ownedBy", address)
	return namespaces, err
}

func (c *Client) SearchMetadata(ctx context.Context, criteria MetadataCriteria) ([]model.MetadataEntry, error) {
	var entries []model.MetadataEntry
	err := c.call(ctx, &entries, "metadata_search", criteria)
	return entries, err
}
