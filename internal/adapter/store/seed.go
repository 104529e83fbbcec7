package store

import (
	"context"
	"fmt"

	"github.com/pandamall/atlogistics/internal/domain"
	"github.com/pandamall/atlogistics/internal/port"
)

// Default catalog rows used when the store is empty, so a fresh deployment
// has something to render.
var defaultCategories = []domain.Category{
	{ID: "1", Name: "Thời trang", NameEn: "Fashion", NameZh: "服装服饰", Icon: "👔", ProductCount: 234},
	{ID: "2", Name: "Mẹ và bé", NameEn: "Mother & Baby", NameZh: "母婴用品", Icon: "👶", ProductCount: 156},
	{ID: "3", Name: "Phụ kiện điện tử", NameEn: "Electronics", NameZh: "电子配件", Icon: "📱", ProductCount: 189},
	{ID: "4", Name: "Nhà cửa đời sống", NameEn: "Home & Living", NameZh: "家居生活", Icon: "🏠", ProductCount: 142},
	{ID: "5", Name: "Thể thao du lịch", NameEn: "Sports & Travel", NameZh: "运动户外", Icon: "⚽", ProductCount: 98},
	{ID: "6", Name: "Sức khỏe làm đẹp", NameEn: "Health & Beauty", NameZh: "美妆个护", Icon: "💄", ProductCount: 176},
}

var defaultProducts = []domain.Product{
	{
		ID: "1", Title: "Áo khoác nữ thời trang", TitleEn: "Women's Fashion Jacket", TitleZh: "女士时尚外套",
		Price: 280081, OriginalPrice: 500000, Discount: 44, Sold: 1205, Stock: 350,
		Category: "Fashion", Image: "/images/products/jacket.jpg",
	},
	{
		ID: "2", Title: "Giày thể thao nam", TitleEn: "Men's Running Shoes", TitleZh: "男士运动鞋",
		Price: 450000, OriginalPrice: 600000, Discount: 25, Sold: 876, Stock: 120,
		Category: "Sports & Travel", Image: "/images/products/shoes.jpg",
	},
	{
		ID: "3", Title: "Bàn phím cơ RGB", TitleEn: "RGB Mechanical Keyboard", TitleZh: "RGB机械键盘",
		Price: 890000, OriginalPrice: 890000, Discount: 0, Sold: 432, Stock: 85,
		Category: "Electronics", Image: "/images/products/keyboard.jpg",
	},
	{
		ID: "4", Title: "Bộ chăn ga gối cotton", TitleEn: "Cotton Bedding Set", TitleZh: "纯棉床品四件套",
		Price: 320000, OriginalPrice: 400000, Discount: 20, Sold: 654, Stock: 200,
		Category: "Home & Living", Image: "/images/products/bedding.jpg",
	},
}

// SeedCatalog inserts the default categories and products when the
// respective tables are empty. Safe to call on every startup.
func SeedCatalog(ctx context.Context, store port.CatalogStore) error {
	cats, err := store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("seed: list categories: %w", err)
	}
	if len(cats) == 0 {
		for i := range defaultCategories {
			if _, err := store.CreateCategory(ctx, &defaultCategories[i]); err != nil {
				return fmt.Errorf("seed category %q: %w", defaultCategories[i].NameEn, err)
			}
		}
	}

	products, err := store.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("seed: list products: %w", err)
	}
	if len(products) == 0 {
		for i := range defaultProducts {
			if _, err := store.CreateProduct(ctx, &defaultProducts[i]); err != nil {
				return fmt.Errorf("seed product %q: %w", defaultProducts[i].TitleEn, err)
			}
		}
	}
	return nil
}
