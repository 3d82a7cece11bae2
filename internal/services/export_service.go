package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/sjperalta/bitacora-api/internal/bitacora"
	"github.com/sjperalta/bitacora-api/internal/jobs"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/internal/storage"
	"github.com/sjperalta/bitacora-api/pkg/logger"
	"github.com/xuri/excelize/v2"
	"golang.org/x/image/font/gofont/gomono"
)

// FileStore is where official documents are archived
type FileStore interface {
	Save(relativePath string, data []byte) error
	Read(relativePath string) ([]byte, error)
	Exists(relativePath string) bool
}

// ExportService renders sealed days and day listings to files
type ExportService struct {
	bitacora *BitacoraService
	closures *ClosureService
	store    FileStore
}

func NewExportService(bitacoraSvc *BitacoraService, closureSvc *ClosureService, store FileStore) *ExportService {
	return &ExportService{
		bitacora: bitacoraSvc,
		closures: closureSvc,
		store:    store,
	}
}

// GetClosurePDF returns the official PDF of a sealed day, from the archive when
// it was already rendered.
func (s *ExportService) GetClosurePDF(ctx context.Context, actor *Actor, projectID uint, date string) ([]byte, string, error) {
	closure, err := s.closures.GetClosure(ctx, actor, projectID, date)
	if err != nil {
		return nil, "", err
	}
	path := storage.ClosurePDFPath(closure.ProjectID, closure.DateString(), closure.GUID)
	filename := fmt.Sprintf("bitacora_%d_%s.pdf", closure.ProjectID, closure.DateString())

	if s.store.Exists(path) {
		data, err := s.store.Read(path)
		if err == nil {
			return data, filename, nil
		}
		logger.FromContext(ctx).Warn("Archived closure PDF unreadable, rendering again", "path", path, "error", err)
	}

	data, err := s.archive(closure)
	if err != nil {
		return nil, "", err
	}
	return data, filename, nil
}

// ArchiveClosurePDFJob renders and stores the PDF of a new closure in the background
func (s *ExportService) ArchiveClosurePDFJob(_ *models.Project, closure *models.DayClosure) (string, jobs.Job) {
	sealed := *closure
	return jobs.JobArchiveClosurePDF, func(ctx context.Context) error {
		if _, err := s.archive(&sealed); err != nil {
			return err
		}
		logger.FromContext(ctx).Info("Closure PDF archived", "folio", sealed.GUID)
		return nil
	}
}

func (s *ExportService) archive(closure *models.DayClosure) ([]byte, error) {
	data, err := RenderClosurePDF(closure)
	if err != nil {
		return nil, err
	}
	path := storage.ClosurePDFPath(closure.ProjectID, closure.DateString(), closure.GUID)
	if err := s.store.Save(path, data); err != nil {
		return nil, storageErr("archive_pdf", err)
	}
	return data, nil
}

// closurePDFFont is embedded as UTF-8 so the printed text matches the sealed
// (and hashed) text rune for rune
const closurePDFFont = "GoMono"

// RenderClosurePDF prints the sealed official text. Each page footer carries the
// folio and the content hash so a printed copy can be checked against the record.
func RenderClosurePDF(closure *models.DayClosure) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.AddUTF8FontFromBytes(closurePDFFont, "", gomono.TTF)
	pdf.SetTitle("Bitácora "+closure.DateString(), true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 22)
	pdf.AliasNbPages("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(closurePDFFont, "", 7)
		pdf.CellFormat(0, 4, "Folio: "+closure.GUID, "", 1, "L", false, 0, "")
		pdf.CellFormat(140, 4, "SHA-256: "+closure.ContentHash, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 4, fmt.Sprintf("%d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont(closurePDFFont, "", 9)
	pdf.MultiCell(0, 4.2, closure.OfficialContent, "", "L", false)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render closure pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportDayXLSX lists the entries of a day as a spreadsheet, in document order
func (s *ExportService) ExportDayXLSX(ctx context.Context, actor *Actor, projectID uint, date string) ([]byte, string, error) {
	project, w, entries, err := s.bitacora.dayEntries(ctx, actor, projectID, date)
	if err != nil {
		return nil, "", err
	}
	closed, err := s.bitacora.IsDayClosed(ctx, projectID, w)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Bitácora"
	_ = f.SetSheetName("Sheet1", sheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	status := "Abierto"
	if closed {
		status = "Cerrado"
	}
	_ = f.SetCellValue(sheet, "A1", project.Name)
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	_ = f.SetCellValue(sheet, "A2", "Fecha")
	_ = f.SetCellValue(sheet, "B2", w.Date)
	_ = f.SetCellValue(sheet, "A3", "Estado")
	_ = f.SetCellValue(sheet, "B3", status)

	headers := []string{"#", "Sección", "Hora", "Título", "Autor", "Contenido", "Fotografías", "Bloqueada"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 5)
		_ = f.SetCellValue(sheet, cell, h)
	}
	_ = f.SetCellStyle(sheet, "A5", "H5", headerStyle)

	doc := ToDocument(project, w, entries)
	locked := make(map[uint]bool, len(entries))
	for i := range entries {
		locked[entries[i].ID] = entries[i].IsLocked
	}

	row, seq := 6, 0
	loc := s.bitacora.Calendar().Location()
	for _, section := range bitacora.Sections(doc.Entries) {
		for _, e := range section.Entries {
			seq++
			title := e.Title
			if title == "" {
				title = bitacora.UntitledPlaceholder
			}
			values := []interface{}{seq, section.Title, e.CreatedAt.In(loc).Format("15:04"), title, e.Author, e.Content, e.PhotoCount, siNo(locked[e.ID])}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}
	_ = f.SetColWidth(sheet, "F", "F", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("write xlsx: %w", err)
	}

	filename := fmt.Sprintf("bitacora_%d_%s.xlsx", projectID, w.Date)
	return buf.Bytes(), filename, nil
}

func siNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
