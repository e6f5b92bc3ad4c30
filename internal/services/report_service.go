package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ReportService renders lease paperwork: a rent statement PDF, the installment
// schedule as a spreadsheet, and an arrears CSV for the back office.
type ReportService struct {
	leaseRepo       repository.LeaseRepository
	installmentRepo repository.InstallmentRepository
	accessSvc       *AccessService
}

func NewReportService(
	leaseRepo repository.LeaseRepository,
	installmentRepo repository.InstallmentRepository,
	accessSvc *AccessService,
) *ReportService {
	return &ReportService{
		leaseRepo:       leaseRepo,
		installmentRepo: installmentRepo,
		accessSvc:       accessSvc,
	}
}

// RentStatementPDF renders a lease summary with its full installment schedule
// and paid state.
func (s *ReportService) RentStatementPDF(ctx context.Context, caller Caller, leaseID uint) ([]byte, string, error) {
	lease, err := s.fetchLease(ctx, caller, leaseID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Rent Statement")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Tenant:")
	pdf.Cell(80, 8, lease.Tenant.FullName)
	pdf.Ln(6)
	pdf.Cell(60, 8, "Property:")
	pdf.Cell(80, 8, lease.Property.Address)
	pdf.Ln(6)
	pdf.Cell(60, 8, "Start date:")
	pdf.Cell(80, 8, lease.StartDate.Format("02/01/2006"))
	pdf.Ln(6)
	pdf.Cell(60, 8, "Duration:")
	pdf.Cell(80, 8, fmt.Sprintf("%d years", lease.DurationYears))
	pdf.Ln(6)
	pdf.Cell(60, 8, "Annual rent:")
	pdf.Cell(80, 8, fmt.Sprintf("%.2f EUR", lease.AnnualRent))
	pdf.Ln(6)
	pdf.Cell(60, 8, "Frequency:")
	pdf.Cell(80, 8, lease.Frequency)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Installments")
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.Cell(15, 7, "#")
	pdf.Cell(40, 7, "Due date")
	pdf.Cell(40, 7, "Amount")
	pdf.Cell(30, 7, "Status")
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 9)
	var unpaidTotal float64
	for _, inst := range lease.Installments {
		pdf.Cell(15, 6, fmt.Sprintf("%d", inst.Ordinal))
		pdf.Cell(40, 6, inst.DueDate.Format("02/01/2006"))
		pdf.Cell(40, 6, fmt.Sprintf("%.2f EUR", inst.Amount))
		pdf.Cell(30, 6, inst.Status)
		pdf.Ln(6)
		if inst.IsUnpaid() {
			unpaidTotal += inst.Amount
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(60, 8, "Outstanding:")
	pdf.Cell(40, 8, fmt.Sprintf("%.2f EUR", unpaidTotal))

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("rent_statement_%s.pdf", lease.GUID)
	return buf.Bytes(), filename, nil
}

// ScheduleXLSX exports a lease's installment schedule as a spreadsheet
func (s *ReportService) ScheduleXLSX(ctx context.Context, caller Caller, leaseID uint) ([]byte, string, error) {
	lease, err := s.fetchLease(ctx, caller, leaseID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Schedule"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Installment schedule for %s", lease.Property.Address))
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	_ = f.SetCellValue(sheet, "A3", "Installment")
	_ = f.SetCellValue(sheet, "B3", "Due date")
	_ = f.SetCellValue(sheet, "C3", "Amount")
	_ = f.SetCellValue(sheet, "D3", "Status")

	for i, inst := range lease.Installments {
		row := i + 4
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), inst.Ordinal)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), inst.DueDate.Format("2006-01-02"))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), inst.Amount)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), inst.Status)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("schedule_%s.xlsx", lease.GUID)
	return buf.Bytes(), filename, nil
}

// ArrearsCSV exports the leases in arrears as a CSV for the back office
func (s *ReportService) ArrearsCSV(ctx context.Context, caller Caller, minUnpaid int) ([]byte, string, error) {
	if !s.accessSvc.CanWrite(caller) {
		return nil, "", fmt.Errorf("%w: arrears reports require an elevated role", ErrAccessDenied)
	}
	if minUnpaid < 1 {
		minUnpaid = 3
	}

	rows, err := s.leaseRepo.FindInArrears(ctx, nil, minUnpaid)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)

	_ = w.Write([]string{"Arrears report", time.Now().Format("2006-01-02 15:04")})
	_ = w.Write([]string{""})
	_ = w.Write([]string{"Lease", "Tenant", "Unpaid installments", "Unpaid total"})

	for _, row := range rows {
		_ = w.Write([]string{
			row.GUID,
			row.TenantName,
			fmt.Sprintf("%d", row.UnpaidCount),
			fmt.Sprintf("%.2f", row.UnpaidTotal),
		})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("arrears_report_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ReportService) fetchLease(ctx context.Context, caller Caller, leaseID uint) (*models.Lease, error) {
	lease, err := s.leaseRepo.FindByIDWithDetails(ctx, leaseID)
	if err != nil {
		return nil, dbError(err, "lease", leaseID)
	}
	if !s.accessSvc.CanAccess(caller, lease.TenantID) {
		return nil, fmt.Errorf("%w: lease %d", ErrAccessDenied, leaseID)
	}
	return lease, nil
}
