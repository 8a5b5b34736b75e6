package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/clerk/pkg/analysis"
	"github.com/papercomputeco/clerk/pkg/pdf"
)

// handleAnalyze handles POST /v1/invoices/analyze multipart uploads with
// the fields employee_name, policy_file (.pdf) and invoices_zip (.zip).
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	employee := strings.TrimSpace(c.FormValue("employee_name"))
	if employee == "" {
		return errorJSON(c, fiber.StatusBadRequest, "employee_name is required")
	}

	policyFile, err := c.FormFile("policy_file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "policy_file is required")
	}
	if !hasExt(policyFile.Filename, ".pdf") {
		return errorJSON(c, fiber.StatusBadRequest, "policy_file must be a PDF")
	}

	archiveFile, err := c.FormFile("invoices_zip")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invoices_zip is required")
	}
	if !hasExt(archiveFile.Filename, ".zip") {
		return errorJSON(c, fiber.StatusBadRequest, "invoices_zip must be a ZIP archive")
	}

	policyData, err := readFormFile(policyFile)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	policyText, err := pdf.ExtractText(policyData)
	if err != nil {
		s.logger.Warn("unreadable policy file", "filename", policyFile.Filename, "error", err)
		return errorJSON(c, fiber.StatusBadRequest, "could not read policy_file")
	}

	archiveData, err := readFormFile(archiveFile)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	invoices, err := analysis.ReadArchive(archiveData)
	if err != nil {
		s.logger.Warn("unreadable invoice archive", "filename", archiveFile.Filename, "error", err)
		return errorJSON(c, fiber.StatusBadRequest, "could not read invoices_zip")
	}
	if len(invoices) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "invoices_zip contains no PDF invoices")
	}

	s.logger.Info("analyzing invoice batch",
		"employee_name", employee,
		"invoices", len(invoices),
	)

	result := s.config.Batch.Run(c.Context(), analysis.BatchRequest{
		EmployeeName: employee,
		PolicyText:   policyText,
		Invoices:     invoices,
	})

	return c.JSON(result)
}

func hasExt(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	return data, nil
}
