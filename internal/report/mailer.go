package report

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"caixapos/internal/config"
	"caixapos/internal/ledger"
)

// Mailer sends closing reports to the supervisor address.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// EnviarFechamento mails the PDF report with a one-line summary body.
func (m *Mailer) EnviarFechamento(to string, f *ledger.Fechamento, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Fechamento de caixa %s — %s", f.SessaoID, f.Status())
	e.Text = []byte(fmt.Sprintf(
		"Sessão %s fechada em %s.\nSaldo esperado: %s\nContagem física: %s\nDiferença: %s (%s)\n",
		f.SessaoID,
		f.FechadaEm.Format("02/01/2006 15:04"),
		f.SaldoEsperado, f.ContagemFisica, f.Diferenca, f.Status(),
	))

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
