package feishu

import (
	"context"
	"fmt"
	"log/slog"

	larkbitable "github.com/larksuite/oapi-sdk-go/v3/service/bitable/v1"
)

const (
	bitableFieldPageSize  = 100
	bitableRecordPageSize = 100
)

// TableField is one column of a bitable snapshot.
type TableField struct {
	Name string
	Type int
}

// TableSnapshot is the read-only view of a bitable table handed to the
// analysis prompts: schema plus the first page of records.
type TableSnapshot struct {
	AppToken  string
	TableID   string
	TableName string
	Fields    []TableField
	Records   []map[string]any
}

// TableSnapshot fetches a table's schema and records. When tableID is empty
// the first table of the app is used.
func (c *Client) TableSnapshot(ctx context.Context, appToken, tableID string) (TableSnapshot, error) {
	snap := TableSnapshot{AppToken: appToken, TableID: tableID}

	if snap.TableID == "" {
		listReq := larkbitable.NewListAppTableReqBuilder().
			AppToken(appToken).
			PageSize(1).
			Build()
		listResp, err := c.api.Bitable.V1.AppTable.List(ctx, listReq)
		if err != nil {
			return TableSnapshot{}, fmt.Errorf("list tables: %w", err)
		}
		if !listResp.Success() {
			return TableSnapshot{}, fmt.Errorf("list tables failed: %s (code: %d)", listResp.Msg, listResp.Code)
		}
		if len(listResp.Data.Items) == 0 {
			return TableSnapshot{}, fmt.Errorf("bitable %s has no tables", appToken)
		}
		first := listResp.Data.Items[0]
		if first.TableId != nil {
			snap.TableID = *first.TableId
		}
		if first.Name != nil {
			snap.TableName = *first.Name
		}
	}

	fieldReq := larkbitable.NewListAppTableFieldReqBuilder().
		AppToken(appToken).
		TableId(snap.TableID).
		PageSize(bitableFieldPageSize).
		Build()
	fieldResp, err := c.api.Bitable.V1.AppTableField.List(ctx, fieldReq)
	if err != nil {
		return TableSnapshot{}, fmt.Errorf("list table fields: %w", err)
	}
	if !fieldResp.Success() {
		return TableSnapshot{}, fmt.Errorf("list table fields failed: %s (code: %d)", fieldResp.Msg, fieldResp.Code)
	}
	for _, f := range fieldResp.Data.Items {
		field := TableField{}
		if f.FieldName != nil {
			field.Name = *f.FieldName
		}
		if f.Type != nil {
			field.Type = *f.Type
		}
		snap.Fields = append(snap.Fields, field)
	}

	recordReq := larkbitable.NewListAppTableRecordReqBuilder().
		AppToken(appToken).
		TableId(snap.TableID).
		PageSize(bitableRecordPageSize).
		Build()
	recordResp, err := c.api.Bitable.V1.AppTableRecord.List(ctx, recordReq)
	if err != nil {
		return TableSnapshot{}, fmt.Errorf("list table records: %w", err)
	}
	if !recordResp.Success() {
		return TableSnapshot{}, fmt.Errorf("list table records failed: %s (code: %d)", recordResp.Msg, recordResp.Code)
	}
	for _, r := range recordResp.Data.Items {
		snap.Records = append(snap.Records, r.Fields)
	}

	return snap, nil
}

// FieldOption is one choice of a single-select column.
type FieldOption struct {
	Name string `json:"name"`
}

// FieldProperty carries the extra configuration some column types need.
type FieldProperty struct {
	Options []FieldOption `json:"options"`
}

// FieldSpec is one column definition for table creation. The json tags match
// the structure the model is prompted to emit.
type FieldSpec struct {
	Name     string         `json:"field_name"`
	Type     int            `json:"type"`
	UIType   string         `json:"ui_type"`
	Property *FieldProperty `json:"property,omitempty"`
}

// TableSpec is the model-generated structure a new bitable is built from.
// Record keys are the field display names.
type TableSpec struct {
	Name    string           `json:"tableName"`
	Fields  []FieldSpec      `json:"fields"`
	Records []map[string]any `json:"records"`
}

// CreatedTable describes a bitable produced by CreateBitable.
type CreatedTable struct {
	AppToken    string
	TableID     string
	Name        string
	URL         string
	FieldCount  int
	RecordCount int
}

// CreateBitable creates a bitable app with one table shaped by spec, seeds
// the given records, and grants the requesting user edit permission. The
// permission grant is best effort.
func (c *Client) CreateBitable(ctx context.Context, spec TableSpec, userOpenID string) (CreatedTable, error) {
	appReq := larkbitable.NewCreateAppReqBuilder().
		ReqApp(larkbitable.NewReqAppBuilder().
			Name(spec.Name).
			FolderToken("").
			Build()).
		Build()
	appResp, err := c.api.Bitable.V1.App.Create(ctx, appReq)
	if err != nil {
		return CreatedTable{}, fmt.Errorf("create bitable app: %w", err)
	}
	if !appResp.Success() {
		return CreatedTable{}, fmt.Errorf("create bitable app failed: %s (code: %d)", appResp.Msg, appResp.Code)
	}
	if appResp.Data.App == nil || appResp.Data.App.AppToken == nil {
		return CreatedTable{}, fmt.Errorf("create bitable app: response carries no app token")
	}
	appToken := *appResp.Data.App.AppToken

	headers := make([]*larkbitable.AppTableCreateHeader, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		header := larkbitable.NewAppTableCreateHeaderBuilder().
			FieldName(f.Name).
			Type(f.Type)
		if f.Property != nil && len(f.Property.Options) > 0 {
			options := make([]*larkbitable.AppTableFieldPropertyOption, 0, len(f.Property.Options))
			for _, opt := range f.Property.Options {
				options = append(options, larkbitable.NewAppTableFieldPropertyOptionBuilder().
					Name(opt.Name).
					Build())
			}
			header.Property(larkbitable.NewAppTableFieldPropertyBuilder().
				Options(options).
				Build())
		}
		headers = append(headers, header.Build())
	}

	tableReq := larkbitable.NewCreateAppTableReqBuilder().
		AppToken(appToken).
		Body(larkbitable.NewCreateAppTableReqBodyBuilder().
			Table(larkbitable.NewReqTableBuilder().
				Name(spec.Name).
				Fields(headers).
				Build()).
			Build()).
		Build()
	tableResp, err := c.api.Bitable.V1.AppTable.Create(ctx, tableReq)
	if err != nil {
		return CreatedTable{}, fmt.Errorf("create table: %w", err)
	}
	if !tableResp.Success() {
		return CreatedTable{}, fmt.Errorf("create table failed: %s (code: %d)", tableResp.Msg, tableResp.Code)
	}
	if tableResp.Data.TableId == nil {
		return CreatedTable{}, fmt.Errorf("create table: response carries no table id")
	}
	tableID := *tableResp.Data.TableId

	if len(spec.Records) > 0 {
		records := make([]*larkbitable.AppTableRecord, 0, len(spec.Records))
		for _, fields := range spec.Records {
			records = append(records, larkbitable.NewAppTableRecordBuilder().
				Fields(fields).
				Build())
		}
		recordReq := larkbitable.NewBatchCreateAppTableRecordReqBuilder().
			AppToken(appToken).
			TableId(tableID).
			Body(larkbitable.NewBatchCreateAppTableRecordReqBodyBuilder().
				Records(records).
				Build()).
			Build()
		recordResp, err := c.api.Bitable.V1.AppTableRecord.BatchCreate(ctx, recordReq)
		if err != nil {
			return CreatedTable{}, fmt.Errorf("seed records: %w", err)
		}
		if !recordResp.Success() {
			return CreatedTable{}, fmt.Errorf("seed records failed: %s (code: %d)", recordResp.Msg, recordResp.Code)
		}
	}

	if userOpenID != "" {
		if err := c.grantEdit(ctx, appToken, "bitable", userOpenID); err != nil {
			c.logger.Warn("grant bitable permission failed",
				slog.String("app_token", appToken), slog.String("error", err.Error()))
		}
	}

	return CreatedTable{
		AppToken:    appToken,
		TableID:     tableID,
		Name:        spec.Name,
		URL:         fmt.Sprintf("%s/base/%s", c.shareBaseURL(), appToken),
		FieldCount:  len(spec.Fields),
		RecordCount: len(spec.Records),
	}, nil
}
