package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/craftline/cartengine/engine"
	"github.com/craftline/cartengine/internal/checkout"
	"github.com/craftline/cartengine/pkg/config"
	"github.com/craftline/cartengine/pkg/enums"
	"github.com/craftline/cartengine/pkg/logger"
)

const usage = `cartcli <command> [args]

commands:
  products                                  list the catalog
  cart                                      show the cart snapshot
  add <product-id> <quantity> [size]        add a product to the cart
  remove <line-id>                          remove a cart line
  qty <line-id> <quantity>                  change a line's quantity
  size <line-id> <size>                     change a line's size
  customize <line-id> <image-path>          attach a customization image
  totals [standard|express|overnight]       price the cart
  checkout <address> <phone> [shipping]     submit the order
  orders                                    show order history

the bearer token is read from CRAFTLINE_TOKEN.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	logg := logger.New(logger.Options{ServiceName: "cartcli"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Debug(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config", err)
	}

	eng, err := engine.New(engine.Params{Config: cfg, Logger: logg})
	if err != nil {
		fatal("build engine", err)
	}

	if token := os.Getenv("CRAFTLINE_TOKEN"); token != "" {
		if err := eng.Login(ctx, token); err != nil {
			fatal("login", err)
		}
	}

	if err := run(ctx, eng, os.Args[1], os.Args[2:]); err != nil {
		fatal(os.Args[1], err)
	}
}

func run(ctx context.Context, eng *engine.Engine, command string, args []string) error {
	switch command {
	case "products":
		products, err := eng.Products(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			custom := ""
			if p.IsCustomizable {
				custom = " customizable"
			}
			fmt.Printf("%s  ₹%s  %s%s %v\n", p.ID, p.UnitPrice, p.Title, custom, p.Sizes)
		}
		return nil

	case "cart":
		for _, line := range eng.CartSnapshot() {
			size := "-"
			if line.Size != nil {
				size = *line.Size
			}
			custom := ""
			if eng.HasCustomization(line.ID) {
				custom = " [custom image pending]"
			}
			fmt.Printf("%s  product=%s qty=%d size=%s%s\n", line.ID, line.ProductID, line.Quantity, size, custom)
		}
		fmt.Printf("%d item(s)\n", eng.CartItemCount())
		return nil

	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: add <product-id> <quantity> [size]")
		}
		productID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id: %w", err)
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity: %w", err)
		}
		var size *string
		if len(args) > 2 {
			size = &args[2]
		}
		return eng.AddToCart(ctx, productID, quantity, size)

	case "remove":
		if len(args) < 1 {
			return fmt.Errorf("usage: remove <line-id>")
		}
		lineID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid line id: %w", err)
		}
		return eng.RemoveFromCart(ctx, lineID)

	case "qty":
		if len(args) < 2 {
			return fmt.Errorf("usage: qty <line-id> <quantity>")
		}
		lineID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid line id: %w", err)
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity: %w", err)
		}
		return eng.SetQuantity(ctx, lineID, quantity)

	case "size":
		if len(args) < 2 {
			return fmt.Errorf("usage: size <line-id> <size>")
		}
		lineID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid line id: %w", err)
		}
		return eng.SetSize(ctx, lineID, args[1])

	case "customize":
		if len(args) < 2 {
			return fmt.Errorf("usage: customize <line-id> <image-path>")
		}
		lineID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid line id: %w", err)
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		if err := eng.CaptureCustomization(ctx, lineID, data); err != nil {
			return err
		}
		if url, ok := eng.CustomizationPreview(lineID); ok {
			fmt.Printf("preview: %s\n", url)
		}
		return nil

	case "totals":
		option := enums.ShippingOptionStandard
		if len(args) > 0 {
			parsed, err := enums.ParseShippingOption(args[0])
			if err != nil {
				return err
			}
			option = parsed
		}
		totals, err := eng.EstimateTotals(ctx, option)
		if err != nil {
			return err
		}
		fmt.Printf("subtotal ₹%s\ntax      ₹%s\nshipping ₹%s\ntotal    ₹%s\n",
			totals.Subtotal, totals.Tax, totals.Shipping, totals.Total)
		return nil

	case "checkout":
		if len(args) < 2 {
			return fmt.Errorf("usage: checkout <address> <phone> [shipping]")
		}
		option := enums.ShippingOptionStandard
		if len(args) > 2 {
			parsed, err := enums.ParseShippingOption(args[2])
			if err != nil {
				return err
			}
			option = parsed
		}
		result, err := eng.Checkout(ctx, checkout.BillingInfo{
			Address:        args[0],
			Phone:          args[1],
			ShippingOption: option,
		})
		if err != nil {
			return err
		}
		for _, warning := range result.Warnings {
			fmt.Printf("warning: line %s submitted without its custom image: %v\n", warning.LineID, warning.Err)
		}
		fmt.Printf("order %s placed, total ₹%s\n", result.Order.ID, result.Totals.Total)
		return nil

	case "orders":
		orders, err := eng.OrderHistory(ctx)
		if err != nil {
			return err
		}
		for _, order := range orders {
			fmt.Printf("%s  %s  ₹%s  %s\n", order.ID, order.Status, order.TotalAmount, order.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil

	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func fatal(step string, err error) {
	fmt.Fprintf(os.Stderr, "cartcli: %s: %v\n", step, err)
	os.Exit(1)
}
