package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/customer-care-api/internal/config"
	"github.com/spec-kit/customer-care-api/internal/repository"
)

func parsePage(c *fiber.Ctx, cfg config.QueryConfig) repository.Page {
	page := parseInt(c.Query("page"), 1)
	perPage := parseInt(c.Query("per_page"), cfg.DefaultPerPage)
	if cfg.MaxPerPage > 0 && perPage > cfg.MaxPerPage {
		perPage = cfg.MaxPerPage
	}
	return repository.Page{Number: page, Size: perPage}
}

func parseSort(c *fiber.Ctx) repository.Sort {
	return repository.Sort{
		Field:     c.Query("sort_by"),
		Direction: c.Query("sort_direction"),
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	return &val
}
