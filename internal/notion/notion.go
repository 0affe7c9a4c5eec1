package notion

import (
	"context"

	"github.com/jomei/notionapi"
)

//go:generate mockgen -source=notion.go -destination=mock_notion/mock_notion.go -package=mock_notion
type NotionClient interface {
	Database() DatabaseService
	Block() BlockService
}

// DatabaseService is the subset of notionapi.DatabaseService used here
type DatabaseService interface {
	Query(context.Context, notionapi.DatabaseID, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

// BlockService is the subset of notionapi.BlockService used here
type BlockService interface {
	GetChildren(context.Context, notionapi.BlockID, *notionapi.Pagination) (*notionapi.GetChildrenResponse, error)
}
