package handlers

import (
	"strconv"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/middleware"
	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CartHandler struct {
	DB *gorm.DB
}

func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{DB: db}
}

// CartLine joins a cart item with the live product so the client always sees
// current price, stock and availability rather than values cached at add time.
type CartLine struct {
	ID        uint      `json:"id"`
	ProductID uint      `json:"product_id"`
	Qty       int       `json:"qty"`
	AddedAt   time.Time `json:"added_at"`

	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
	StockQty  int     `json:"stock_qty"`
	SellerID  uint    `json:"seller_id"`
	Available bool    `json:"available"`
}

type CartView struct {
	Items      []CartLine `json:"items"`
	Total      float64    `json:"total"`
	TotalItems int        `json:"total_items"`
}

// GetCart - GET /api/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	cart, err := h.loadCart(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch cart"))
	}

	view := CartView{Items: []CartLine{}}
	if len(cart.Items) > 0 {
		ids := make([]uint, 0, len(cart.Items))
		for _, it := range cart.Items {
			ids = append(ids, it.ProductID)
		}
		var products []models.Product
		if err := h.DB.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
			Where("id IN ?", ids).Find(&products).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not fetch cart"))
		}
		byID := make(map[uint]*models.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		for _, it := range cart.Items {
			p := byID[it.ProductID]
			if p == nil {
				// Product was hard-deleted; drop the orphan line.
				h.DB.Delete(&models.CartItem{}, it.ID)
				continue
			}
			line := CartLine{
				ID:        it.ID,
				ProductID: it.ProductID,
				Qty:       it.Qty,
				AddedAt:   it.AddedAt,
				Name:      p.Name,
				Price:     p.Price,
				ImageURL:  p.MainImageURL(),
				StockQty:  p.StockQty,
				SellerID:  p.SellerID,
				Available: p.Purchasable(),
			}
			view.Items = append(view.Items, line)
			if line.Available {
				view.Total += p.Price * float64(it.Qty)
				view.TotalItems += it.Qty
			}
		}
	}

	return c.JSON(models.SuccessResponse("", view, nil))
}

// AddToCart - POST /api/cart/items
// Adding an already-present product merges quantities; the merged qty is
// capped at the current stock.
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req struct {
		ProductID uint `json:"product_id"`
		Qty       int  `json:"qty"`
	}
	if err := c.BodyParser(&req); err != nil || req.ProductID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("product_id is required"))
	}
	if req.Qty < 1 {
		req.Qty = 1
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Product not found"))
	}
	if !product.Purchasable() {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Product is not available"))
	}
	if product.SellerID == user.ID {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("You cannot buy your own product"))
	}
	if product.StockQty < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Product is out of stock"))
	}

	cart, err := h.loadCart(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update cart"))
	}

	var item models.CartItem
	err = h.DB.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).First(&item).Error
	switch {
	case err == nil:
		item.Qty += req.Qty
		if item.Qty > product.StockQty {
			item.Qty = product.StockQty
		}
		if err := h.DB.Save(&item).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update cart"))
		}
	case err == gorm.ErrRecordNotFound:
		qty := req.Qty
		if qty > product.StockQty {
			qty = product.StockQty
		}
		item = models.CartItem{
			CartID:    cart.ID,
			ProductID: req.ProductID,
			Qty:       qty,
			AddedAt:   time.Now().UTC(),
		}
		if err := h.DB.Create(&item).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update cart"))
		}
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update cart"))
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse("Added to cart", item, nil))
}

// UpdateCartItem - PATCH /api/cart/items/:id
func (h *CartHandler) UpdateCartItem(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid item ID"))
	}

	var req struct {
		Qty int `json:"qty"`
	}
	if err := c.BodyParser(&req); err != nil || req.Qty < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid quantity"))
	}

	item, errResp := h.ownedItem(user.ID, uint(id))
	if errResp != nil {
		return errResp(c)
	}

	if req.Qty == 0 {
		if err := h.DB.Delete(item).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update cart"))
		}
		return c.JSON(models.SuccessResponse("Item removed", nil, nil))
	}

	var product models.Product
	if err := h.DB.First(&product, item.ProductID).Error; err == nil && req.Qty > product.StockQty {
		req.Qty = product.StockQty
	}
	if req.Qty < 1 {
		req.Qty = 1
	}

	item.Qty = req.Qty
	if err := h.DB.Save(item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update cart"))
	}

	return c.JSON(models.SuccessResponse("Cart updated", item, nil))
}

// RemoveCartItem - DELETE /api/cart/items/:id
func (h *CartHandler) RemoveCartItem(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid item ID"))
	}

	item, errResp := h.ownedItem(user.ID, uint(id))
	if errResp != nil {
		return errResp(c)
	}

	if err := h.DB.Delete(item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Could not update cart"))
	}

	return c.JSON(models.SuccessResponse("Item removed", nil, nil))
}

// loadCart fetches or lazily creates the user's cart.
func (h *CartHandler) loadCart(userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := h.DB.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("added_at asc") }).
		Where("user_id = ?", userID).First(&cart).Error
	if err == gorm.ErrRecordNotFound {
		cart = models.Cart{UserID: userID}
		if err := h.DB.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ownedItem loads the cart item and verifies it belongs to the user's cart.
func (h *CartHandler) ownedItem(userID, itemID uint) (*models.CartItem, func(*fiber.Ctx) error) {
	var item models.CartItem
	if err := h.DB.First(&item, itemID).Error; err != nil {
		return nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Cart item not found"))
		}
	}

	var cart models.Cart
	if err := h.DB.Where("user_id = ?", userID).First(&cart).Error; err != nil || cart.ID != item.CartID {
		return nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Cart item not found"))
		}
	}

	return &item, nil
}
