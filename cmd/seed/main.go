package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	bankingapp "github.com/fintermediary/backoffice/internal/application/banking"
	catalogapp "github.com/fintermediary/backoffice/internal/application/catalog"
	financeapp "github.com/fintermediary/backoffice/internal/application/finance"
	identityapp "github.com/fintermediary/backoffice/internal/application/identity"
	partnerapp "github.com/fintermediary/backoffice/internal/application/partner"
	"github.com/fintermediary/backoffice/internal/infrastructure/auth"
	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/fintermediary/backoffice/internal/infrastructure/logger"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type options struct {
	seed      uint64
	customers int
	managers  int
	products  int
	email     string
	password  string
}

type services struct {
	auth      *identityapp.AuthService
	orgs      *identityapp.OrganizationService
	customers *partnerapp.CustomerService
	managers  *partnerapp.RelationshipManagerService
	accounts  *bankingapp.BankAccountService
	products  *catalogapp.ProductService
	expenses  *financeapp.ExpenseService
	profits   *financeapp.ProfitSharingService
	txs       *financeapp.AssetTransactionService
	rates     *financeapp.ExchangeRateService
}

var (
	productCategories = []string{"fund", "insurance", "bond", "structured", "deposit"}
	productLabels     = map[string]string{
		"fund":       "Growth Fund",
		"insurance":  "Legacy Plan",
		"bond":       "Income Bond",
		"structured": "Capital Note",
		"deposit":    "Fixed Deposit",
	}
	expenseCategories = []string{"travel", "entertainment", "marketing", "office", "training"}
	currencies        = []string{"SGD", "USD"}
	banks             = []struct{ name, swift string }{
		{"DBS Bank", "DBSSSGSG"},
		{"OCBC Bank", "OCBCSGSG"},
		{"UOB", "UOVBSGSG"},
		{"Citibank Singapore", "CITISGSG"},
	}
)

func main() {
	var opts options
	flag.Uint64Var(&opts.seed, "seed", 42, "Random seed; the same seed produces the same data set")
	flag.IntVar(&opts.customers, "customers", 25, "Number of customers")
	flag.IntVar(&opts.managers, "managers", 4, "Number of relationship managers (half as many finders are added)")
	flag.IntVar(&opts.products, "products", 6, "Number of products")
	flag.StringVar(&opts.email, "email", "owner@example.com", "Owner account email")
	flag.StringVar(&opts.password, "password", "changeme123", "Owner account password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel("warn"))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if cfg.Database.AutoMigrate || cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
	}

	svc := newServices(cfg, db, log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, svc, gofakeit.New(opts.seed), opts, log); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
}

func newServices(cfg *config.Config, db *persistence.Database, log *zap.Logger) *services {
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	membershipRepo := persistence.NewGormMembershipRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	managerRepo := persistence.NewGormRelationshipManagerRepository(db.DB)
	accountRepo := persistence.NewGormBankAccountRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	profitRepo := persistence.NewGormProfitSharingRepository(db.DB)
	txRepo := persistence.NewGormAssetTransactionRepository(db.DB)
	rateRepo := persistence.NewGormExchangeRateRepository(db.DB)

	orgs := identityapp.NewOrganizationService(orgRepo, membershipRepo, userRepo)
	orgs.SetLogger(log)
	rates := financeapp.NewExchangeRateService(rateRepo, orgRepo)

	return &services{
		auth: identityapp.NewAuthService(
			userRepo, membershipRepo, orgs, auth.NewJWTService(cfg.JWT), auth.NewInMemoryTokenBlacklist(),
			identityapp.DefaultAuthServiceConfig(), log,
		),
		orgs:      orgs,
		customers: partnerapp.NewCustomerService(customerRepo, managerRepo, txRepo, profitRepo),
		managers:  partnerapp.NewRelationshipManagerService(managerRepo, customerRepo),
		accounts:  bankingapp.NewBankAccountService(accountRepo, customerRepo),
		products:  catalogapp.NewProductService(productRepo, txRepo),
		expenses:  financeapp.NewExpenseService(expenseRepo, managerRepo),
		profits:   financeapp.NewProfitSharingService(profitRepo, customerRepo, productRepo, managerRepo, orgRepo, rates),
		txs:       financeapp.NewAssetTransactionService(txRepo, customerRepo, productRepo),
		rates:     rates,
	}
}

func run(ctx context.Context, svc *services, f *gofakeit.Faker, opts options, log *zap.Logger) error {
	owner, err := svc.auth.Register(ctx, identityapp.RegisterRequest{
		Email:    opts.email,
		Name:     f.Name(),
		Password: opts.password,
	})
	if err != nil {
		return fmt.Errorf("register owner %s: %w", opts.email, err)
	}
	ownerID := owner.User.ID

	company := f.Company()
	org, err := svc.orgs.Create(ctx, ownerID, identityapp.CreateOrganizationRequest{
		Name:         company + " Wealth",
		Slug:         slugify(company) + "-" + f.Numerify("###"),
		BaseCurrency: "SGD",
		Locale:       "en-SG",
		ContactEmail: "ops@" + slugify(company) + ".example.com",
	})
	if err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	tenantID := org.ID
	log.Info("Organization created", zap.String("id", tenantID.String()), zap.String("slug", org.Slug))

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, pair := range []struct{ from, to, rate string }{
		{"USD", "SGD", "1.3450"},
		{"EUR", "SGD", "1.4620"},
		{"GBP", "SGD", "1.7105"},
		{"IDR", "SGD", "0.0000846"},
	} {
		if _, err := svc.rates.Upsert(ctx, tenantID, financeapp.UpsertExchangeRateRequest{
			FromCurrency:  pair.from,
			ToCurrency:    pair.to,
			Rate:          decimal.RequireFromString(pair.rate),
			EffectiveDate: today.AddDate(0, 0, -30).Format("2006-01-02"),
		}); err != nil {
			return fmt.Errorf("exchange rate %s/%s: %w", pair.from, pair.to, err)
		}
	}

	rms, finders, err := seedManagers(ctx, svc, f, tenantID, ownerID, opts.managers)
	if err != nil {
		return err
	}
	products, err := seedProducts(ctx, svc, f, tenantID, ownerID, opts.products)
	if err != nil {
		return err
	}

	var (
		accounts int
		txs      int
		profits  int
	)
	for i := 0; i < opts.customers; i++ {
		rm := rms[f.IntN(len(rms))]
		req := partnerapp.CreateCustomerRequest{
			Code:      fmt.Sprintf("C%05d", i+1),
			Type:      "individual",
			Email:     f.Email(),
			Phone:     f.Phone(),
			IDNumber:  f.Regex("[STFG][0-9]{7}[A-Z]"),
			RMID:      &rm.ID,
			CreatedBy: &ownerID,
		}
		if f.Bool() {
			req.Type = "corporate"
			req.Name = f.Company()
		} else {
			req.Name = f.Name()
		}
		var finder *partnerapp.RelationshipManagerResponse
		if len(finders) > 0 && f.IntN(3) == 0 {
			finder = &finders[f.IntN(len(finders))]
			req.FinderID = &finder.ID
		}
		customer, err := svc.customers.Create(ctx, tenantID, req)
		if err != nil {
			return fmt.Errorf("customer %s: %w", req.Code, err)
		}

		for j := 0; j < 1+f.IntN(2); j++ {
			bank := banks[f.IntN(len(banks))]
			if _, err := svc.accounts.Create(ctx, tenantID, bankingapp.CreateBankAccountRequest{
				CustomerID:    customer.ID,
				BankName:      bank.name,
				AccountName:   customer.Name,
				AccountNumber: f.Numerify("###-#####-#"),
				Currency:      currencies[j%len(currencies)],
				SwiftCode:     bank.swift,
				IsPrimary:     j == 0,
				CreatedBy:     &ownerID,
			}); err != nil {
				return fmt.Errorf("bank account for %s: %w", customer.Code, err)
			}
			accounts++
		}

		product := products[f.IntN(len(products))]
		quantity := decimal.NewFromInt(int64(100 * (1 + f.IntN(50))))
		price := decimal.NewFromFloat(f.Price(0.8, 25)).Round(4)
		tx, err := svc.txs.Create(ctx, tenantID, financeapp.CreateAssetTransactionRequest{
			CustomerID: customer.ID,
			ProductID:  product.ID,
			Type:       "subscription",
			TradeDate:  today.AddDate(0, 0, -f.IntN(180)).Format("2006-01-02"),
			Quantity:   quantity,
			Price:      price,
			Reference:  f.Regex("REF-[A-Z0-9]{8}"),
			CreatedBy:  &ownerID,
		})
		if err != nil {
			return fmt.Errorf("transaction for %s: %w", customer.Code, err)
		}
		if f.IntN(4) > 0 {
			if _, err := svc.txs.Settle(ctx, tenantID, tx.ID); err != nil {
				return fmt.Errorf("settle %s: %w", tx.TransactionNumber, err)
			}
		}
		txs++

		shareable := tx.Amount.Mul(decimal.NewFromFloat(f.Float64Range(0.005, 0.02))).Round(2)
		if !shareable.IsPositive() {
			continue
		}
		shares := []financeapp.ShareRequest{
			{Party: "COMPANY", Percent: decimal.NewFromInt(50)},
			{Party: "RM1", ManagerID: &rm.ID, Percent: decimal.NewFromInt(30)},
		}
		if finder != nil {
			shares = append(shares, financeapp.ShareRequest{Party: "FINDER1", ManagerID: &finder.ID, Percent: decimal.NewFromInt(20)})
		} else {
			shares[0].Percent = decimal.NewFromInt(70)
		}
		productID := product.ID
		record, err := svc.profits.Create(ctx, tenantID, financeapp.CreateProfitSharingRequest{
			CustomerID:      customer.ID,
			ProductID:       &productID,
			PeriodDate:      today.AddDate(0, -f.IntN(6), 0).Format("2006-01-02"),
			Currency:        tx.Currency,
			GrossRevenue:    shareable.Mul(decimal.NewFromFloat(1.25)).Round(2),
			ShareableAmount: shareable,
			Shares:          shares,
			CreatedBy:       &ownerID,
		})
		if err != nil {
			return fmt.Errorf("profit sharing for %s: %w", customer.Code, err)
		}
		if f.Bool() {
			if _, err := svc.profits.Confirm(ctx, tenantID, record.ID); err != nil {
				return fmt.Errorf("confirm %s: %w", record.RecordNumber, err)
			}
		}
		profits++
	}

	expenses, err := seedExpenses(ctx, svc, f, tenantID, ownerID, rms, today)
	if err != nil {
		return err
	}

	log.Info("Seed complete",
		zap.String("organization", tenantID.String()),
		zap.String("owner", opts.email),
		zap.Int("relationship_managers", len(rms)),
		zap.Int("finders", len(finders)),
		zap.Int("products", len(products)),
		zap.Int("customers", opts.customers),
		zap.Int("bank_accounts", accounts),
		zap.Int("asset_transactions", txs),
		zap.Int("profit_sharing_records", profits),
		zap.Int("expenses", expenses),
	)
	return nil
}

func seedManagers(ctx context.Context, svc *services, f *gofakeit.Faker, tenantID, ownerID uuid.UUID, n int) (rms, finders []partnerapp.RelationshipManagerResponse, err error) {
	if n < 1 {
		n = 1
	}
	create := func(code, role string, percent int64) (*partnerapp.RelationshipManagerResponse, error) {
		share := decimal.NewFromInt(percent)
		return svc.managers.Create(ctx, tenantID, partnerapp.CreateRelationshipManagerRequest{
			Code:                code,
			Name:                f.Name(),
			Role:                role,
			Email:               f.Email(),
			Phone:               f.Phone(),
			DefaultSharePercent: &share,
			CreatedBy:           &ownerID,
		})
	}
	for i := 0; i < n; i++ {
		rm, err := create(fmt.Sprintf("RM%03d", i+1), "RM", 30)
		if err != nil {
			return nil, nil, fmt.Errorf("relationship manager: %w", err)
		}
		rms = append(rms, *rm)
	}
	for i := 0; i < n/2; i++ {
		finder, err := create(fmt.Sprintf("FD%03d", i+1), "FINDER", 20)
		if err != nil {
			return nil, nil, fmt.Errorf("finder: %w", err)
		}
		finders = append(finders, *finder)
	}
	return rms, finders, nil
}

func seedProducts(ctx context.Context, svc *services, f *gofakeit.Faker, tenantID, ownerID uuid.UUID, n int) ([]catalogapp.ProductResponse, error) {
	if n < 1 {
		n = 1
	}
	products := make([]catalogapp.ProductResponse, 0, n)
	for i := 0; i < n; i++ {
		category := productCategories[i%len(productCategories)]
		rate := decimal.NewFromFloat(f.Float64Range(0.5, 3)).Round(2)
		risk := 1 + f.IntN(5)
		p, err := svc.products.Create(ctx, tenantID, catalogapp.CreateProductRequest{
			Code:           fmt.Sprintf("P%03d", i+1),
			Name:           f.LastName() + " " + productLabels[category],
			Category:       category,
			Provider:       f.Company(),
			Currency:       currencies[f.IntN(len(currencies))],
			CommissionRate: &rate,
			RiskLevel:      &risk,
			Description:    f.Sentence(12),
			CreatedBy:      &ownerID,
		})
		if err != nil {
			return nil, fmt.Errorf("product: %w", err)
		}
		products = append(products, *p)
	}
	return products, nil
}

func seedExpenses(ctx context.Context, svc *services, f *gofakeit.Faker, tenantID, ownerID uuid.UUID, rms []partnerapp.RelationshipManagerResponse, today time.Time) (int, error) {
	count := 0
	for _, rm := range rms {
		for j := 0; j < 3; j++ {
			rmID := rm.ID
			e, err := svc.expenses.Create(ctx, tenantID, financeapp.CreateExpenseRequest{
				Category:    expenseCategories[f.IntN(len(expenseCategories))],
				Description: f.Sentence(6),
				Amount:      decimal.NewFromFloat(f.Price(20, 800)).Round(2),
				Currency:    "SGD",
				IncurredAt:  today.AddDate(0, 0, -f.IntN(60)).Format("2006-01-02"),
				RMID:        &rmID,
				CreatedBy:   &ownerID,
			})
			if err != nil {
				return count, fmt.Errorf("expense: %w", err)
			}
			count++
			// Leave a mix of draft, submitted and approved expenses
			if j == 0 {
				continue
			}
			if _, err := svc.expenses.Submit(ctx, tenantID, e.ID); err != nil {
				return count, fmt.Errorf("submit expense: %w", err)
			}
			if j == 2 {
				if _, err := svc.expenses.Approve(ctx, tenantID, e.ID, ownerID); err != nil {
					return count, fmt.Errorf("approve expense: %w", err)
				}
			}
		}
	}
	return count, nil
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
