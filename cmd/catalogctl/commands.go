package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appcatalog "github.com/ERPlora/module-inventory/internal/application/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/printing"
	"github.com/ERPlora/module-inventory/internal/interfaces/console"
)

type usageError string

func (e usageError) Error() string { return string(e) }

type command struct {
	summary string
	usage   string
	run     func(ctx context.Context, a *app, args []string) error
}

var commandOrder = []string{"list", "categories", "create", "edit", "delete", "toggle", "bulk", "export", "import", "print"}

var commands = map[string]command{
	"list": {
		summary: "Show a page of products",
		usage:   "list [-search text] [-page n] [-per-page n] [-sort field] [-dir asc|desc] [-status s] [-category c]",
		run:     runList,
	},
	"categories": {
		summary: "Show the product categories",
		usage:   "categories",
		run:     runCategories,
	},
	"create": {
		summary: "Create a product",
		usage:   "create -name n -sku s -price p [-cost c] [-stock n] [-ean13 code] [-category c] [-image file]",
		run:     runCreate,
	},
	"edit": {
		summary: "Change a product",
		usage:   "edit <sku> [-name n] [-sku s] [-price p] [-cost c] [-stock n] [-ean13 code] [-category c] [-image file]",
		run:     runEdit,
	},
	"delete": {
		summary: "Delete a product",
		usage:   "delete <sku>",
		run:     runDelete,
	},
	"toggle": {
		summary: "Activate or deactivate a product",
		usage:   "toggle <sku>",
		run:     runToggle,
	},
	"bulk": {
		summary: "Activate, deactivate or delete several products",
		usage:   "bulk <activate|deactivate|delete> <sku>...",
		run:     runBulk,
	},
	"export": {
		summary: "Download the catalog",
		usage:   "export [-format csv|excel] [-o file]",
		run:     runExport,
	},
	"import": {
		summary: "Upload a spreadsheet of products",
		usage:   "import [-format csv|excel] <file>",
		run:     runImport,
	},
	"print": {
		summary: "Print a barcode label",
		usage:   "print [-format code128|ean13] <sku>",
		run:     runPrint,
	},
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	return nil
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("list")
	search := fs.String("search", "", "Search text")
	page := fs.Int("page", 1, "Page number")
	perPage := fs.Int("per-page", 0, "Page size (10, 25, 50, 100)")
	sortField := fs.String("sort", "", "Sort by name, sku, price, stock or created_at")
	dir := fs.String("dir", "asc", "Sort direction")
	status := fs.String("status", "", "active, inactive, low_stock or out_of_stock")
	category := fs.String("category", "", "Category")
	if err := parse(fs, args); err != nil {
		return err
	}

	c := a.controller
	// each step reloads; stop at the first failure
	steps := []func() error{
		func() error { return discard(c.Search(ctx, *search)) },
	}
	if *perPage != 0 {
		steps = append(steps, func() error { return discard(c.SetPerPage(ctx, *perPage)) })
	}
	if *sortField != "" {
		steps = append(steps, func() error {
			return discard(c.SetSort(ctx, catalog.SortField(*sortField), catalog.SortDir(*dir)))
		})
	}
	if *status != "" {
		steps = append(steps, func() error { return discard(c.SetStatusFilter(ctx, catalog.StatusFilter(*status))) })
	}
	if *category != "" {
		steps = append(steps, func() error { return discard(c.SetCategoryFilter(ctx, *category)) })
	}
	if *page > 1 {
		steps = append(steps, func() error { return discard(c.GoToPage(ctx, *page)) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return render(a)
}

func runCategories(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return usageError("categories takes no arguments")
	}
	categories, err := a.controller.LoadCategories(ctx)
	if err != nil {
		return err
	}
	if err := console.RenderCategories(os.Stdout, categories); err != nil {
		return err
	}
	report, err := a.controller.CategoryReport(ctx)
	if err != nil {
		return err
	}
	return console.RenderCategoryStats(os.Stdout, report)
}

func render(a *app) error {
	st := a.controller.State()
	if err := console.RenderStats(os.Stdout, st.Stats); err != nil {
		return err
	}
	return console.RenderPage(os.Stdout, st.Page, a.controller.Avatar)
}

func discard(_ catalog.Page, err error) error {
	return err
}

// productFlags registers the editable product fields on fs
type productFlags struct {
	name, sku, ean13, category, price, cost, image *string
	stock, threshold                               *int
	inactive                                       *bool
}

func newProductFlags(fs *flag.FlagSet) *productFlags {
	return &productFlags{
		name:      fs.String("name", "", "Product name"),
		sku:       fs.String("sku", "", "Stock keeping unit"),
		ean13:     fs.String("ean13", "", "EAN-13 code"),
		category:  fs.String("category", "", "Category"),
		price:     fs.String("price", "0", "Sale price"),
		cost:      fs.String("cost", "0", "Purchase cost"),
		image:     fs.String("image", "", "Image file"),
		stock:     fs.Int("stock", 0, "Units in stock"),
		threshold: fs.Int("low-stock", catalog.DefaultLowStockThreshold, "Low stock threshold"),
		inactive:  fs.Bool("inactive", false, "Mark the product inactive"),
	}
}

// apply copies the flags that were set on the command line onto f
func (p *productFlags) apply(fs *flag.FlagSet, f *catalog.ProductFields) error {
	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "name":
			f.Name = *p.name
		case "sku":
			f.SKU = *p.sku
		case "ean13":
			f.EAN13 = *p.ean13
		case "category":
			f.Category = *p.category
		case "price":
			f.Price, err = decimal.NewFromString(*p.price)
		case "cost":
			f.Cost, err = decimal.NewFromString(*p.cost)
		case "stock":
			f.Stock = *p.stock
		case "low-stock":
			f.LowStockThreshold = *p.threshold
		case "inactive":
			active := !*p.inactive
			f.IsActive = &active
		case "image":
			f.Image, err = readAttachment(*p.image)
		}
		if err != nil {
			err = usageError(fmt.Sprintf("-%s: %v", fl.Name, err))
		}
	})
	return err
}

func readAttachment(path string) (*catalog.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &catalog.Attachment{
		Filename:    filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

func runCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("create")
	pf := newProductFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	fields := catalog.NewProductFields("", "", decimal.Zero)
	if err := pf.apply(fs, &fields); err != nil {
		return err
	}
	if _, err := a.controller.LoadProducts(ctx); err != nil {
		return err
	}
	return a.controller.CreateProduct(ctx, fields)
}

func runEdit(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return usageError("SKU required")
	}
	fs := newFlagSet("edit")
	pf := newProductFlags(fs)
	if err := parse(fs, args[1:]); err != nil {
		return err
	}
	product, err := a.controller.FindBySKU(ctx, args[0])
	if err != nil {
		return err
	}
	fields := product.Fields()
	if err := pf.apply(fs, &fields); err != nil {
		return err
	}
	return a.controller.UpdateProduct(ctx, product.ID, fields)
}

func runDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usageError("exactly one SKU required")
	}
	product, err := a.controller.FindBySKU(ctx, args[0])
	if err != nil {
		return err
	}
	return a.controller.DeleteProduct(ctx, product)
}

func runToggle(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usageError("exactly one SKU required")
	}
	product, err := a.controller.FindBySKU(ctx, args[0])
	if err != nil {
		return err
	}
	return a.controller.ToggleStatus(ctx, product)
}

func runBulk(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return usageError("action and at least one SKU required")
	}
	action := catalog.BulkAction(args[0])
	if !action.IsValid() {
		return usageError("unknown action " + strconv.Quote(args[0]))
	}
	ids := make([]uuid.UUID, 0, len(args)-1)
	for _, sku := range args[1:] {
		product, err := a.controller.FindBySKU(ctx, sku)
		if err != nil {
			return err
		}
		ids = append(ids, product.ID)
	}
	return a.controller.BulkAction(ctx, ids, action)
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("export")
	format := fs.String("format", string(catalog.FileCSV), "csv or excel")
	out := fs.String("o", "", "Output file (default: products.<ext>, - for stdout)")
	if err := parse(fs, args); err != nil {
		return err
	}
	kind := catalog.FileKind(*format)
	if !kind.IsValid() {
		return usageError("unknown format " + strconv.Quote(*format))
	}

	if *out == "-" {
		w := bufio.NewWriter(os.Stdout)
		if _, err := a.controller.Export(ctx, kind, w); err != nil {
			return err
		}
		return w.Flush()
	}

	path := *out
	if path == "" {
		path = "products." + kind.Extension()
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := a.controller.Export(ctx, kind, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func runImport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("import")
	format := fs.String("format", "", "csv or excel (default: from the file name)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("exactly one file required")
	}
	path := fs.Arg(0)

	kind := catalog.FileKind(*format)
	if kind == "" {
		kind = catalog.FileCSV
		if ext := strings.ToLower(filepath.Ext(path)); ext == ".xlsx" || ext == ".xls" {
			kind = catalog.FileExcel
		}
	}

	file, err := readAttachment(path)
	if err != nil {
		return err
	}
	if _, err := a.controller.LoadProducts(ctx); err != nil {
		return err
	}
	if err := a.controller.ImportFile(ctx, *file, kind); err != nil {
		return err
	}
	return render(a)
}

func runPrint(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("print")
	format := fs.String("format", a.cfg.Barcode.Format, "code128 or ean13")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("exactly one SKU required")
	}
	barcodeFormat, ok := printing.ParseFormat(*format)
	if !ok {
		return usageError("unknown format " + strconv.Quote(*format))
	}

	product, err := a.controller.FindBySKU(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	job, err := a.controller.PrintBarcode(ctx, product, barcodeFormat)
	if err != nil {
		return err
	}

	// A visible print window lives only as long as the process
	if job.Status == printing.JobStatusFallbackOpened && a.cfg.Print.Fallback == "browser" && !a.cfg.Print.Headless {
		_, _ = a.prompt.Confirm(ctx, appcatalog.Confirmation{
			Title:   "Print window open",
			Message: "Close it now?",
		})
	}
	return nil
}
