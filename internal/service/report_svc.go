package service

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"mp_report_v1/internal/model"
)

// ==================== 报表生成 ====================

// ContentTypeXLSX 多 Sheet 工作簿的响应 Content-Type
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportService 把聚合结果渲染为 xlsx 工作簿
type ReportService struct{}

func NewReportService() *ReportService {
	return &ReportService{}
}

// Render 生成固定六张 Sheet 的工作簿
// 空表也会生成只含表头的 Sheet，绝不缺 Sheet；
// 列顺序由统一行结构决定，与平台自身的字段顺序无关
func (s *ReportService) Render(rep *model.Report) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	// 先订单后库存，平台按固定顺序
	for _, kind := range model.AllKinds() {
		for _, mp := range model.AllMarketplaces() {
			if err := s.writeSheet(f, rep, mp, kind); err != nil {
				return nil, &model.RenderError{Err: err}
			}
		}
	}

	// 去掉 excelize 的默认 Sheet
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, &model.RenderError{Err: err}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, &model.RenderError{Err: err}
	}
	return buf, nil
}

func (s *ReportService) writeSheet(f *excelize.File, rep *model.Report, mp model.Marketplace, kind model.Kind) error {
	name := model.SheetName(mp, kind)
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	var headers []string
	if kind == model.KindOrders {
		headers = model.OrderHeaders()
	} else {
		headers = model.StockHeaders()
	}
	headerCells := make([]interface{}, len(headers))
	for i, h := range headers {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &headerCells); err != nil {
		return err
	}

	row := 2
	if kind == model.KindOrders {
		for _, r := range rep.Orders[mp] {
			if err := s.setRow(f, name, row, r.Cells()); err != nil {
				return err
			}
			row++
		}
	} else {
		for _, r := range rep.Stocks[mp] {
			if err := s.setRow(f, name, row, r.Cells()); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (s *ReportService) setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
