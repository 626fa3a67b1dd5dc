package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"blog-backend/internal/domains/post/model"
)

const exportSheet = "Posts"

var exportHeaders = []string{"ID", "Text", "Author", "Group", "Published"}

// Export ghi toàn bộ posts ra XLSX (admin list view)
func (s *postService) Export(ctx context.Context, w io.Writer) error {
	posts, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, p := range posts {
		row := exportRow(p)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{row.ID, row.ShortText, row.Author, row.GroupSlug, row.PubDate}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "A", 38); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func exportRow(p *model.Post) model.ExportRow {
	row := model.ExportRow{
		ID:        p.ID.String(),
		ShortText: p.String(),
		Author:    p.Author.Username,
		PubDate:   p.PubDate.UTC().Format(time.RFC3339),
	}
	if p.Group != nil {
		row.GroupSlug = p.Group.Slug
	}
	return row
}
