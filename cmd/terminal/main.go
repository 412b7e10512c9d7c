// cmd/terminal — headless POS cashier terminal.
//
// Usage:
//
//	terminal login      -usuario U -senha S
//	terminal abrir      -saldo "100,00"
//	terminal status
//	terminal suprimento -valor "50,00" -categoria troco -descricao "reforço de troco"
//	terminal sangria    -valor "200,00" -categoria deposito -descricao "depósito bancário"
//	terminal pagamento  -valor "35,90" -categoria frete -descricao "entrega da manhã"
//	terminal venda      -arquivo carrinho.json [-recebido "50,00"]
//	terminal fechar     -contagem "1.234,56" [-pdf] [-email]
//	terminal historico  [-page 1] [-limit 20]
//	terminal sync
//	terminal watch
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"caixapos/internal/api"
	"caixapos/internal/auth"
	"caixapos/internal/caixa"
	"caixapos/internal/checkout"
	"caixapos/internal/config"
	"caixapos/internal/infra"
	"caixapos/internal/ledger"
	"caixapos/internal/money"
	"caixapos/internal/poller"
	"caixapos/internal/report"
	"caixapos/internal/spool"
	"caixapos/internal/terminal"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	app := newApp(cfg)
	ctx := context.Background()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "login":
		err = app.login(ctx, args)
	case "abrir":
		err = app.abrir(ctx, args)
	case "status":
		err = app.status(ctx)
	case "suprimento", "sangria", "pagamento":
		err = app.movimento(ctx, ledger.Tipo(cmd), args)
	case "venda":
		err = app.venda(ctx, args)
	case "fechar":
		err = app.fechar(ctx, args)
	case "historico":
		err = app.historico(ctx, args)
	case "sync":
		err = app.sync(ctx)
	case "watch":
		err = app.watch()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("comando", cmd).Msg("comando falhou")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "uso: terminal <login|abrir|status|suprimento|sangria|pagamento|venda|fechar|historico|sync|watch> [flags]")
}

// app wires the dependency graph once per invocation:
// Terminal ← Store/Client ← Auth ← Config.
type app struct {
	cfg    *config.Config
	tokens *auth.Manager
	client *api.Client
	store  *caixa.Store
	term   *terminal.Terminal
}

func newApp(cfg *config.Config) *app {
	anon := api.NewClient(cfg.BackendURL, nil)
	tokens := auth.NewManager(anon, cfg.TokenPath)
	client := api.NewClient(cfg.BackendURL, tokens)
	store := caixa.NewStore(money.Centavos(cfg.LimitePagamentoCentavos))

	return &app{
		cfg:    cfg,
		tokens: tokens,
		client: client,
		store:  store,
		term:   terminal.New(client, store, nil, tokens.OperadorID()),
	}
}

// redisSpool connects latently; the spool is optional — without Redis, sales
// simply fail loudly when the backend is down.
func (a *app) redisSpool(ctx context.Context) (*redis.Client, *spool.Spool) {
	rdb, err := infra.NewRedis(a.cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis indisponível; spool de vendas desativado")
		return nil, nil
	}
	return rdb, spool.New(rdb)
}

// restaurar mirrors the operator's open backend session before any command
// that needs one.
func (a *app) restaurar(ctx context.Context) error {
	sessao, err := a.term.RestaurarSessao(ctx)
	if err != nil {
		return err
	}
	if sessao == nil {
		return terminal.ErrSemSessao
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	usuario := fs.String("usuario", "", "nome de usuário")
	senha := fs.String("senha", "", "senha")
	_ = fs.Parse(args)

	if err := a.tokens.Login(ctx, *usuario, *senha); err != nil {
		return err
	}
	log.Info().Str("operador", a.tokens.OperadorID()).Msg("autenticado")
	return nil
}

func (a *app) abrir(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("abrir", flag.ExitOnError)
	saldo := fs.String("saldo", "0", "saldo inicial (ex.: 100,00)")
	_ = fs.Parse(args)

	valor, err := money.Parse(*saldo)
	if err != nil {
		return err
	}
	sessao, err := a.term.AbrirCaixa(ctx, valor)
	if err != nil {
		return err
	}
	log.Info().
		Str("sessao", sessao.ID.String()).
		Str("saldo_inicial", sessao.SaldoInicial.String()).
		Msg("caixa aberto")
	return nil
}

func (a *app) status(ctx context.Context) error {
	if err := a.restaurar(ctx); err != nil {
		return err
	}
	estado := a.term.Estado()
	t := estado.Totais
	fmt.Printf("Sessão:              %s\n", estado.Sessao.ID)
	fmt.Printf("Aberta em:           %s\n", estado.Sessao.AbertaEm.Format("02/01/2006 15:04"))
	fmt.Printf("Saldo inicial:       %s\n", estado.Sessao.SaldoInicial)
	fmt.Printf("Vendas:              %s\n", t.TotalVendas)
	fmt.Printf("Suprimentos:         %s\n", t.TotalSuprimentos)
	fmt.Printf("Saídas:              %s\n", t.TotalSaidas)
	fmt.Printf("Dinheiro em caixa:   %s\n", t.DinheiroEmCaixa)
	return nil
}

func (a *app) movimento(ctx context.Context, tipo ledger.Tipo, args []string) error {
	fs := flag.NewFlagSet(string(tipo), flag.ExitOnError)
	valor := fs.String("valor", "", "valor (ex.: 50,00)")
	categoria := fs.String("categoria", "", "categoria do movimento")
	descricao := fs.String("descricao", "", "descrição")
	_ = fs.Parse(args)

	v, err := money.Parse(*valor)
	if err != nil {
		return err
	}
	if err := a.restaurar(ctx); err != nil {
		return err
	}
	if err := a.term.RegistrarMovimento(ctx, tipo, v, *categoria, *descricao); err != nil {
		return err
	}
	log.Info().Str("tipo", string(tipo)).Str("valor", v.String()).Msg("movimento registrado")
	return nil
}

// carrinhoArquivo is the JSON cart format consumed by `terminal venda`.
type carrinhoArquivo struct {
	Itens []struct {
		ProdutoID  string `json:"productId"`
		Descricao  string `json:"description"`
		Quantidade int    `json:"quantity"`
		TotalLinha int64  `json:"line_total"`
	} `json:"items"`
	DescontoTotal int64  `json:"discountTotal"`
	ClienteID     string `json:"clientId"`
	Pagamentos    []struct {
		Metodo string `json:"method"`
		Valor  int64  `json:"amount"`
	} `json:"payments"`
}

func (a *app) venda(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("venda", flag.ExitOnError)
	arquivo := fs.String("arquivo", "", "arquivo JSON do carrinho")
	recebido := fs.String("recebido", "", "valor recebido em dinheiro (atalho sem divisão)")
	_ = fs.Parse(args)

	data, err := os.ReadFile(*arquivo)
	if err != nil {
		return err
	}
	var arq carrinhoArquivo
	if err := json.Unmarshal(data, &arq); err != nil {
		return fmt.Errorf("carrinho inválido: %w", err)
	}

	carrinho := checkout.Carrinho{
		DescontoTotal: money.Centavos(arq.DescontoTotal),
		ClienteID:     arq.ClienteID,
	}
	for _, it := range arq.Itens {
		carrinho.Itens = append(carrinho.Itens, ledger.ItemVenda{
			ProdutoID:  it.ProdutoID,
			Descricao:  it.Descricao,
			Quantidade: it.Quantidade,
			TotalLinha: money.Centavos(it.TotalLinha),
		})
	}

	var finalizada checkout.VendaFinalizada
	if *recebido != "" {
		v, err := money.Parse(*recebido)
		if err != nil {
			return err
		}
		if finalizada, err = carrinho.FinalizarDinheiro(v); err != nil {
			return err
		}
		fmt.Printf("Troco: %s\n", finalizada.TrocoCentavos)
	} else {
		divisor, err := checkout.NewDivisor(carrinho.Total())
		if err != nil {
			return err
		}
		for _, p := range arq.Pagamentos {
			if err := divisor.Adicionar(p.Metodo, money.Centavos(p.Valor)); err != nil {
				return err
			}
		}
		if finalizada, err = carrinho.Finalizar(divisor); err != nil {
			return err
		}
	}

	rdb, sp := a.redisSpool(ctx)
	if rdb != nil {
		defer rdb.Close()
		a.term = terminal.New(a.client, a.store, sp, a.tokens.OperadorID())
	}

	if err := a.restaurar(ctx); err != nil {
		return err
	}

	vendaID, enfileirada, err := a.term.RegistrarVenda(ctx, finalizada)
	if err != nil {
		return err
	}
	if enfileirada {
		log.Warn().Msg("backend inacessível — venda enfileirada para sincronização")
		return nil
	}
	log.Info().Str("venda_id", vendaID).Str("total", finalizada.Venda.Total.String()).Msg("venda registrada")
	return nil
}

func (a *app) fechar(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fechar", flag.ExitOnError)
	contagem := fs.String("contagem", "", "contagem física do dinheiro (ex.: 1.234,56)")
	gerarPDF := fs.Bool("pdf", false, "gerar relatório PDF do fechamento")
	enviarEmail := fs.Bool("email", false, "enviar o relatório para o supervisor")
	_ = fs.Parse(args)

	if err := a.restaurar(ctx); err != nil {
		return err
	}

	f, err := a.term.FecharCaixa(ctx, *contagem)
	if err != nil {
		return err
	}

	fmt.Printf("Saldo inicial:    %s\n", f.SaldoInicial)
	fmt.Printf("Vendas:           %s (dinheiro: %s)\n", f.TotalVendas, f.TotalVendasDinheiro)
	fmt.Printf("Suprimentos:      %s\n", f.TotalSuprimentos)
	fmt.Printf("Sangrias:         %s\n", f.TotalSangrias)
	fmt.Printf("Pagamentos:       %s\n", f.TotalPagamentos)
	fmt.Printf("Saldo esperado:   %s\n", f.SaldoEsperado)
	fmt.Printf("Contagem física:  %s\n", f.ContagemFisica)
	fmt.Printf("Diferença:        %s (%s)\n", f.Diferenca, f.Status())

	// Two-step gate: the session stays on screen until the operator dismisses
	// the summary.
	fmt.Print("Confirmar fechamento? [s/N] ")
	resp, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(resp)), "s") {
		log.Warn().Msg("fechamento não confirmado; sessão permanece em conferência")
		return nil
	}

	final, err := a.term.ConfirmarFechamento()
	if err != nil {
		return err
	}
	log.Info().Str("status", string(final.Status())).Msg("caixa fechado")

	if *gerarPDF || *enviarEmail {
		path, err := report.GerarFechamentoPDF(&final, a.cfg.ReportDir)
		if err != nil {
			return err
		}
		log.Info().Str("arquivo", path).Msg("relatório gerado")
		if *enviarEmail {
			mailer := report.NewMailer(a.cfg)
			if err := mailer.EnviarFechamento(a.cfg.SupervisorEmail, &final, path); err != nil {
				return err
			}
			log.Info().Str("para", a.cfg.SupervisorEmail).Msg("relatório enviado")
		}
	}
	return nil
}

func (a *app) historico(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("historico", flag.ExitOnError)
	page := fs.Int("page", 1, "página")
	limit := fs.Int("limit", 20, "itens por página")
	_ = fs.Parse(args)

	sessoes, total, err := a.client.Historico(ctx, *page, *limit)
	if err != nil {
		return err
	}
	for _, s := range sessoes {
		fechada := "aberta"
		if s.FechadaEm != nil {
			fechada = s.FechadaEm.Format("02/01 15:04")
		}
		fmt.Printf("%s  inicial=%s final=%s diferença=%s  %s\n",
			s.ID,
			money.Centavos(s.SaldoInicial),
			money.Centavos(s.SaldoFinal),
			money.Centavos(s.Diferenca),
			fechada)
	}
	fmt.Printf("total: %d\n", total)
	return nil
}

// sync drains the offline sale spool and exits when it is empty.
func (a *app) sync(ctx context.Context) error {
	rdb, sp := a.redisSpool(ctx)
	if rdb == nil {
		return fmt.Errorf("redis indisponível")
	}
	defer rdb.Close()

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	spool.StartSyncWorkers(workerCtx, rdb, a.client, a.cfg.SyncWorkers)

	for {
		n, err := sp.Pendentes(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			dlq, _ := sp.Descartadas(ctx)
			log.Info().Int64("dlq", dlq).Msg("spool drenado")
			return nil
		}
		time.Sleep(time.Second)
	}
}

// watch runs the polling daemon: session refresh plus spool sync workers,
// until SIGINT/SIGTERM.
func (a *app) watch() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.restaurar(ctx); err != nil {
		return err
	}

	rdb, _ := a.redisSpool(ctx)
	if rdb != nil {
		defer rdb.Close()
		spool.StartSyncWorkers(ctx, rdb, a.client, a.cfg.SyncWorkers)
	}

	interval := time.Duration(a.cfg.PollIntervalSeconds) * time.Second
	p := poller.New("sessao", interval, func(tctx context.Context) error {
		if err := a.term.Atualizar(tctx); err != nil {
			return err
		}
		t := a.term.Estado().Totais
		log.Info().
			Str("dinheiro_em_caixa", t.DinheiroEmCaixa.String()).
			Str("vendas", t.TotalVendas.String()).
			Msg("sessão atualizada")
		return nil
	})
	go p.Run(ctx)

	log.Info().Dur("intervalo", interval).Msg("terminal em modo watch")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("encerrando terminal…")
	cancel()
	time.Sleep(200 * time.Millisecond) // let workers log their shutdown
	return nil
}
