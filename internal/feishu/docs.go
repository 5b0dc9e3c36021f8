package feishu

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	larkdocx "github.com/larksuite/oapi-sdk-go/v3/service/docx/v1"
	larkdrive "github.com/larksuite/oapi-sdk-go/v3/service/drive/v1"
)

// docBlockBatch is the API ceiling for blocks created per request.
const docBlockBatch = 500

// DocRawContent fetches the plain-text body of a docx document.
func (c *Client) DocRawContent(ctx context.Context, documentID string) (string, error) {
	req := larkdocx.NewRawContentDocumentReqBuilder().
		DocumentId(documentID).
		Lang(0).
		Build()

	resp, err := c.api.Docx.V1.Document.RawContent(ctx, req)
	if err != nil {
		return "", fmt.Errorf("fetch document content: %w", err)
	}
	if !resp.Success() {
		return "", fmt.Errorf("fetch document content failed: %s (code: %d)", resp.Msg, resp.Code)
	}
	if resp.Data.Content == nil {
		return "", nil
	}
	return *resp.Data.Content, nil
}

// CreatedDoc describes a document produced by CreateDoc. ContentFilled is
// false when the document exists but the body could not be written into it;
// callers then surface the body for manual copy instead.
type CreatedDoc struct {
	DocumentID    string
	Title         string
	URL           string
	Body          string
	ContentFilled bool
}

// CreateDoc creates a docx document, fills it with the given body line by
// line, and grants the requesting user edit permission. Both the body fill
// and the permission grant are best effort: a created document is still
// returned when either fails.
func (c *Client) CreateDoc(ctx context.Context, title, body, userOpenID string) (CreatedDoc, error) {
	createReq := larkdocx.NewCreateDocumentReqBuilder().
		Body(larkdocx.NewCreateDocumentReqBodyBuilder().
			Title(title).
			Build()).
		Build()

	createResp, err := c.api.Docx.V1.Document.Create(ctx, createReq)
	if err != nil {
		return CreatedDoc{}, fmt.Errorf("create document: %w", err)
	}
	if !createResp.Success() {
		return CreatedDoc{}, fmt.Errorf("create document failed: %s (code: %d)", createResp.Msg, createResp.Code)
	}
	if createResp.Data.Document == nil || createResp.Data.Document.DocumentId == nil {
		return CreatedDoc{}, fmt.Errorf("create document: response carries no document id")
	}
	docID := *createResp.Data.Document.DocumentId

	filled := true
	if err := c.fillDocBlocks(ctx, docID, body); err != nil {
		filled = false
		c.logger.Warn("fill document content failed",
			slog.String("document_id", docID), slog.String("error", err.Error()))
	}

	if userOpenID != "" {
		if err := c.grantEdit(ctx, docID, "docx", userOpenID); err != nil {
			c.logger.Warn("grant document permission failed",
				slog.String("document_id", docID), slog.String("error", err.Error()))
		}
	}

	return CreatedDoc{
		DocumentID:    docID,
		Title:         title,
		URL:           fmt.Sprintf("%s/docx/%s", c.shareBaseURL(), docID),
		Body:          body,
		ContentFilled: filled,
	}, nil
}

// fillDocBlocks appends the body as one text block per line, batched to the
// API limit.
func (c *Client) fillDocBlocks(ctx context.Context, docID, body string) error {
	lines := strings.Split(body, "\n")
	blocks := make([]*larkdocx.Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, textBlock(line))
	}

	for start := 0; start < len(blocks); start += docBlockBatch {
		end := start + docBlockBatch
		if end > len(blocks) {
			end = len(blocks)
		}

		req := larkdocx.NewCreateDocumentBlockChildrenReqBuilder().
			DocumentId(docID).
			BlockId(docID).
			Body(larkdocx.NewCreateDocumentBlockChildrenReqBodyBuilder().
				Children(blocks[start:end]).
				Index(-1).
				Build()).
			Build()

		resp, err := c.api.Docx.V1.DocumentBlockChildren.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("fill document blocks: %w", err)
		}
		if !resp.Success() {
			return fmt.Errorf("fill document blocks failed: %s (code: %d)", resp.Msg, resp.Code)
		}
	}
	return nil
}

func textBlock(line string) *larkdocx.Block {
	return larkdocx.NewBlockBuilder().
		BlockType(2).
		Text(larkdocx.NewTextBuilder().
			Elements([]*larkdocx.TextElement{
				larkdocx.NewTextElementBuilder().
					TextRun(larkdocx.NewTextRunBuilder().
						Content(line).
						Build()).
					Build(),
			}).
			Style(larkdocx.NewTextStyleBuilder().Build()).
			Build()).
		Build()
}

// grantEdit shares a drive resource with a user at edit level.
func (c *Client) grantEdit(ctx context.Context, token, resourceType, userOpenID string) error {
	req := larkdrive.NewCreatePermissionMemberReqBuilder().
		Token(token).
		Type(resourceType).
		NeedNotification(false).
		BaseMember(larkdrive.NewBaseMemberBuilder().
			MemberType("openid").
			MemberId(userOpenID).
			Perm("edit").
			Build()).
		Build()

	resp, err := c.api.Drive.V1.PermissionMember.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("grant permission: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("grant permission failed: %s (code: %d)", resp.Msg, resp.Code)
	}
	return nil
}
