package ecb

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/finsight/invoice-analytics/internal/config"
	"github.com/sirupsen/logrus"
)

// Client handles integration with the ECB daily reference rate feed
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new ECB client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.ECBURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// fetchFeed downloads the daily reference rate XML
func (c *Client) fetchFeed() ([]byte, error) {
	req, err := http.NewRequest("GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	// Log the raw XML response for debugging
	c.log.Debugf("ECB XML response: %s", string(body))

	return body, nil
}

// parseRates parses the rate feed into a currency -> rate map (rates are
// quoted against EUR)
func (c *Client) parseRates(rawBody []byte) (map[string]float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %v", err)
	}

	// The feed nests rates as Envelope/Cube/Cube[@time]/Cube[@currency]
	cubes := doc.FindElements("//Cube/Cube/Cube")
	if len(cubes) == 0 {
		return nil, fmt.Errorf("no rate data found in XML")
	}

	rates := make(map[string]float64)
	for _, cube := range cubes {
		currency := cube.SelectAttrValue("currency", "")
		rateAttr := cube.SelectAttrValue("rate", "")
		if currency == "" || rateAttr == "" {
			continue
		}
		rate, err := strconv.ParseFloat(rateAttr, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate for %s: %v", currency, err)
		}
		rates[currency] = rate
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no parsable rates in XML")
	}
	return rates, nil
}

// GetRate retrieves the current EUR reference rate for a currency
func (c *Client) GetRate(currency string) (float64, error) {
	currency = strings.ToUpper(currency)
	if currency == "EUR" {
		return 1.0, nil
	}

	body, err := c.fetchFeed()
	if err != nil {
		return 0, err
	}

	rates, err := c.parseRates(body)
	if err != nil {
		return 0, err
	}

	rate, ok := rates[currency]
	if !ok {
		return 0, fmt.Errorf("no rate published for %s", currency)
	}

	c.log.Infof("Retrieved EUR/%s rate: %.4f", currency, rate)
	return rate, nil
}
