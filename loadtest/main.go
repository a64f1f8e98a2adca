package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

// reserveBody é o corpo da requisição de reserva enviada ao serviço
type reserveBody struct {
	ProductID       string `json:"product_id"`
	ProductQuantity int    `json:"product_quantity"`
	ProductSize     string `json:"product_size"`
}

// Dispara reservas concorrentes contra o mesmo produto/tamanho e confere que o
// serviço nunca entrega mais unidades do que o estoque permite.
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the backoffice service")
	orderID := flag.String("order", "", "existing order id to attach reservations to")
	productID := flag.String("product", "", "product id under contention")
	size := flag.String("size", "S", "product size to reserve")
	requests := flag.Int("n", 50, "total reservation requests")
	concurrency := flag.Int("c", 10, "concurrent requests")
	flag.Parse()

	if *orderID == "" || *productID == "" {
		log.Fatal("both -order and -product are required")
	}

	client := resty.New().
		SetBaseURL(*baseURL).
		SetTimeout(10 * time.Second)

	var created, insufficient, contention, other int64

	start := time.Now()
	g := new(errgroup.Group)
	g.SetLimit(*concurrency)
	for i := 0; i < *requests; i++ {
		g.Go(func() error {
			resp, err := client.R().
				SetHeader("Content-Type", "application/json").
				SetBody(reserveBody{
					ProductID:       *productID,
					ProductQuantity: 1,
					ProductSize:     *size,
				}).
				Post(fmt.Sprintf("/api/orders/%s/products", *orderID))
			if err != nil {
				return err
			}

			switch resp.StatusCode() {
			case http.StatusCreated:
				atomic.AddInt64(&created, 1)
			case http.StatusBadRequest:
				atomic.AddInt64(&insufficient, 1)
			case http.StatusConflict:
				atomic.AddInt64(&contention, 1)
			default:
				atomic.AddInt64(&other, 1)
				log.Printf("⚠️ Unexpected status %d: %s", resp.StatusCode(), resp.String())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("❌ Load test aborted: %v", err)
	}

	elapsed := time.Since(start)
	log.Printf("🚀 %d requests in %s (%d concurrent)", *requests, elapsed, *concurrency)
	log.Printf("✅ created=%d | insufficient=%d | contention=%d | other=%d",
		created, insufficient, contention, other)

	if other > 0 {
		log.Fatal("❌ Unexpected responses, check service logs")
	}
}
