package steamapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// ConfirmationQuery carries everything a signed confirmation request
// needs. Key must already be computed for the Tag and Timestamp by the
// caller.
type ConfirmationQuery struct {
	DeviceID  string
	SteamID   string
	Key       string
	Timestamp int64
	Tag       string
	Cookies   []string
}

func (q ConfirmationQuery) params() map[string]string {
	return map[string]string{
		"p":   q.DeviceID,
		"a":   q.SteamID,
		"k":   q.Key,
		"t":   strconv.FormatInt(q.Timestamp, 10),
		"m":   "react",
		"tag": q.Tag,
	}
}

func (c *Client) communityRequest(ctx context.Context, q ConfirmationQuery, referer string) *resty.Request {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Referer", referer)
	if len(q.Cookies) > 0 {
		req.SetHeader("Cookie", strings.Join(q.Cookies, "; "))
	}
	return req
}

// FetchConfirmations lists the account's pending confirmations.
func (c *Client) FetchConfirmations(ctx context.Context, q ConfirmationQuery) (*models.ConfirmationList, CallMeta, error) {
	resp, err := c.communityRequest(ctx, q, c.communityBase).
		SetQueryParams(q.params()).
		Get(c.communityBase + confirmationListPath)
	if err != nil {
		return nil, CallMeta{}, fmt.Errorf("list confirmations request: %w", err)
	}

	meta := metaFrom(resp)
	if err = mapHTTPError(resp); err != nil {
		return nil, meta, err
	}

	var list models.ConfirmationList
	if err = json.Unmarshal(resp.Body(), &list); err != nil {
		return nil, meta, fmt.Errorf("decode confirmations response: %w", err)
	}
	return &list, meta, nil
}

// FetchConfirmationDetail fetches the raw detail body for a single
// confirmation. The body shape varies per confirmation type, so it is
// returned undecoded.
func (c *Client) FetchConfirmationDetail(ctx context.Context, q ConfirmationQuery, confirmationID string) (json.RawMessage, CallMeta, error) {
	resp, err := c.communityRequest(ctx, q, c.communityBase).
		SetQueryParams(q.params()).
		Get(c.communityBase + confirmationDetailPath + confirmationID)
	if err != nil {
		return nil, CallMeta{}, fmt.Errorf("confirmation detail request: %w", err)
	}

	meta := metaFrom(resp)
	if err = mapHTTPError(resp); err != nil {
		return nil, meta, err
	}
	return json.RawMessage(resp.Body()), meta, nil
}

// SendConfirmationOp accepts or cancels a single confirmation. op is
// "allow" or "cancel"; the confirmation's id and nonce ride along as
// cid and ck.
func (c *Client) SendConfirmationOp(ctx context.Context, q ConfirmationQuery, op, confirmationID, nonce string) (*models.ConfirmationActionResult, CallMeta, error) {
	form := q.params()
	form["op"] = op
	form["cid"] = confirmationID
	form["ck"] = nonce

	referer := c.communityBase + confirmationDetailPath + confirmationID
	resp, err := c.communityRequest(ctx, q, referer).
		SetFormData(form).
		Post(c.communityBase + confirmationOpPath)
	if err != nil {
		return nil, CallMeta{}, fmt.Errorf("confirmation %s request: %w", op, err)
	}

	meta := metaFrom(resp)
	if err = mapHTTPError(resp); err != nil {
		return nil, meta, err
	}

	var result models.ConfirmationActionResult
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, meta, fmt.Errorf("decode confirmation %s response: %w", op, err)
	}
	return &result, meta, nil
}
