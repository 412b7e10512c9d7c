package report

// pdf.go — closing-report generation using go-pdf/fpdf.
// Produces an A5 fechamento de caixa with:
//   - Session id and close timestamp
//   - Balance table (saldo inicial, vendas, suprimentos, sangrias, pagamentos)
//   - Expected balance vs. physical count
//   - Bold difference line with the integra/sobra/quebra status
//   - Sales audit list
//
// The output file is saved to dir/fechamento_{sessao}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"caixapos/internal/ledger"
	"caixapos/internal/money"
)

var statusLabels = map[ledger.StatusFechamento]string{
	ledger.StatusIntegra: "SESSÃO ÍNTEGRA",
	ledger.StatusSobra:   "SOBRA DE CAIXA",
	ledger.StatusQuebra:  "QUEBRA DE CAIXA",
}

// GerarFechamentoPDF writes the closing report and returns its path.
func GerarFechamentoPDF(f *ledger.Fechamento, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("fechamento_%s.pdf", f.SessaoID)
	filePath := filepath.Join(dir, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr("Fechamento de Caixa"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Sessão %s", f.SessaoID)), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, f.FechadaEm.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// ── Balance table ────────────────────────────────────────────────────────
	colLabel := contentW * 0.6
	colValue := contentW * 0.4

	linha := func(label string, v money.Centavos, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(colLabel, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(colValue, 6, tr(v.String()), "", 1, "R", false, 0, "")
	}

	linha("Saldo inicial", f.SaldoInicial, false)
	linha("Vendas (total)", f.TotalVendas, false)
	linha("Vendas em dinheiro", f.TotalVendasDinheiro, false)
	linha("Suprimentos", f.TotalSuprimentos, false)
	linha("Sangrias", -f.TotalSangrias, false)
	linha("Pagamentos", -f.TotalPagamentos, false)

	pdf.Ln(1)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(1)

	linha("Saldo esperado", f.SaldoEsperado, true)
	linha("Contagem física", f.ContagemFisica, true)

	// ── Difference + status ──────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colLabel, 7, tr("Diferença:"), "", 0, "L", false, 0, "")
	pdf.CellFormat(colValue, 7, tr(f.Diferenca.String()), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 7, tr(statusLabels[f.Status()]), "", 1, "C", false, 0, "")

	// ── Sales audit ──────────────────────────────────────────────────────────
	if len(f.Vendas) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW*0.4, 5, tr("Venda"), "B", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.3, 5, tr("Dinheiro"), "B", 0, "R", false, 0, "")
		pdf.CellFormat(contentW*0.3, 5, tr("Total"), "B", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for _, v := range f.Vendas {
			if v.Venda == nil {
				continue
			}
			id := v.ID.String()
			if len(id) > 8 {
				id = id[:8]
			}
			rotulo := id + " " + v.Timestamp.Format("15:04")
			pdf.CellFormat(contentW*0.4, 5, tr(strings.TrimSpace(rotulo)), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.3, 5, tr(v.Venda.Dinheiro().String()), "", 0, "R", false, 0, "")
			pdf.CellFormat(contentW*0.3, 5, tr(v.Venda.Total.String()), "", 1, "R", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
