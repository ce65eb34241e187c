// Package fixtures holds the demo data a fresh storefront starts with.
// Every accessor returns a new copy.
package fixtures

import (
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/shopspring/decimal"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func Products() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "满记椰皇", NameEn: "Coconut", ImageRef: "/images/product-2.jpg", Price: price("35.9"), Category: "椰皇系列", Description: "精选泰国大颗椰皇，拥有幼嫩口感和丰富汁水"},
		{ID: "2", Name: "杨枝甘露", NameEn: "Mango Pomelo", ImageRef: "/images/hero-2.jpg", Price: price("28.0"), Category: "甘露系列", Description: "经典港式甜品，芒果与柚子的完美搭配"},
		{ID: "3", Name: "白雪冰", NameEn: "Creamy Ice", ImageRef: "/images/product-1.jpg", Price: price("25.9"), Category: "冰系列", Description: "清爽白雪冰，夏日解暑首选"},
		{ID: "4", Name: "双皮奶", NameEn: "Milk Custard", ImageRef: "/images/hero-3.jpg", Price: price("18.0"), Category: "奶系列", Description: "传统港式双皮奶，香滑细腻"},
		{ID: "5", Name: "紫薯芋泥荷花挞", NameEn: "Taro Tart", ImageRef: "/images/product-4.jpg", Price: price("28.0"), Category: "紫薯系列", Description: "紫薯与芋泥的完美结合"},
		{ID: "6", Name: "紫薯班戟", NameEn: "Purple Pancake", ImageRef: "/images/product-4.jpg", Price: price("22.0"), Category: "紫薯系列", Description: "紫薯班戟，软糯香甜"},
		{ID: "7", Name: "焗紫薯西米布丁", NameEn: "Purple Pudding", ImageRef: "/images/product-4.jpg", Price: price("24.0"), Category: "紫薯系列", Description: "焗烤紫薯西米布丁"},
		{ID: "8", Name: "椰皇紫薯汤圆", NameEn: "Coconut Tangyuan", ImageRef: "/images/product-2.jpg", Price: price("32.0"), Category: "椰皇系列", Description: "椰皇紫薯汤圆，温暖甜蜜"},
		{ID: "9", Name: "西瓜冰杯", NameEn: "Watermelon Ice", ImageRef: "/images/product-7.jpg", Price: price("18.0"), Category: "饮品系列", Description: "清爽西瓜冰杯"},
		{ID: "10", Name: "香芒冰杯", NameEn: "Mango Ice", ImageRef: "/images/product-7.jpg", Price: price("20.0"), Category: "饮品系列", Description: "香芒冰杯，芒果控最爱"},
		{ID: "11", Name: "清爽柠檬水", NameEn: "Lemonade", ImageRef: "/images/product-7.jpg", Price: price("15.0"), Category: "饮品系列", Description: "清爽柠檬水，解腻神器"},
		{ID: "12", Name: "草莓冰杯", NameEn: "Strawberry Ice", ImageRef: "/images/product-7.jpg", Price: price("22.0"), Category: "饮品系列", Description: "草莓冰杯，酸甜可口"},
	}
}

func Stores() []domain.StoreLocation {
	return []domain.StoreLocation{
		{ID: "1", Name: "满记甜品·西单店", Address: "北京市西城区西单北大街110号老佛爷百货B1层", City: "北京", Phone: "010-66012345", Hours: "10:00-22:00", Lat: 39.9042, Lng: 116.4074},
		{ID: "2", Name: "满记甜品·朝阳大悦城店", Address: "北京市朝阳区朝阳北路101号朝阳大悦城B1层", City: "北京", Phone: "010-85561234", Hours: "10:00-22:00", Lat: 39.9289, Lng: 116.5180},
		{ID: "3", Name: "满记甜品·三里屯店", Address: "北京市朝阳区三里屯路19号三里屯太古里南区B1层", City: "北京", Phone: "010-64171234", Hours: "10:00-22:30", Lat: 39.9354, Lng: 116.4551},
		{ID: "4", Name: "满记甜品·南京路店", Address: "上海市黄浦区南京东路299号宏伊国际广场B1层", City: "上海", Phone: "021-63281234", Hours: "10:00-22:00", Lat: 31.2304, Lng: 121.4737},
		{ID: "5", Name: "满记甜品·天河城店", Address: "广州市天河区天河路208号天河城B1层", City: "广州", Phone: "020-85591234", Hours: "10:00-22:00", Lat: 23.1320, Lng: 113.2644},
	}
}

func demoAddress() *domain.ShippingAddress {
	return &domain.ShippingAddress{
		Name:     "张三",
		Phone:    "13800138000",
		Province: "北京市",
		City:     "北京市",
		District: "朝阳区",
		Detail:   "某某街道某某小区1号楼1单元101",
		ZipCode:  "100000",
	}
}

// Orders returns the demo orders of the guest user, newest first.
func Orders() []domain.Order {
	return []domain.Order{
		{
			ID:     "ORDER0987654321",
			UserID: domain.GuestID,
			Lines: []domain.OrderLine{
				{ItemID: "3", DisplayName: "紫薯芋泥荷花挞", ImageRef: "/images/product-4.jpg", UnitPrice: price("28.0"), Quantity: 2},
			},
			Total:           price("56.0"),
			Status:          domain.OrderStatusProcessing,
			CreatedAt:       ts("2026-02-11T15:00:00Z"),
			UpdatedAt:       ts("2026-02-11T15:30:00Z"),
			ShippingAddress: demoAddress(),
			PaymentMethod:   domain.PaymentMethodWechat,
			TransactionID:   "TXN0987654321",
		},
		{
			ID:     "ORDER1234567890",
			UserID: domain.GuestID,
			Lines: []domain.OrderLine{
				{ItemID: "1", DisplayName: "满记椰皇", ImageRef: "/images/product-2.jpg", UnitPrice: price("35.9"), Quantity: 1},
				{ItemID: "2", DisplayName: "麻薯抹茶奶冻", ImageRef: "/images/product-5.jpg", UnitPrice: price("25.9"), Quantity: 1},
			},
			Total:           price("61.8"),
			Status:          domain.OrderStatusDelivered,
			CreatedAt:       ts("2026-02-10T10:00:00Z"),
			UpdatedAt:       ts("2026-02-10T14:30:00Z"),
			ShippingAddress: demoAddress(),
			PaymentMethod:   domain.PaymentMethodAlipay,
			TransactionID:   "TXN1234567890",
		},
	}
}

// Comments returns the demo comments, newest first.
func Comments() []domain.Comment {
	return []domain.Comment{
		{ID: "1", ProductID: "1", AuthorID: "1", DisplayName: "张三", Rating: 5, Body: "满记椰皇真的超级好吃！椰香浓郁，口感细腻，推荐大家尝试！", CreatedAt: ts("2026-02-10T10:00:00Z"), LikeCount: 12},
		{ID: "2", ProductID: "1", AuthorID: "2", DisplayName: "李四", Rating: 4, Body: "味道不错，就是价格有点贵，不过值得一试。", CreatedAt: ts("2026-02-09T15:30:00Z"), LikeCount: 5, LikedByCurrentUser: true},
		{ID: "3", ProductID: "2", AuthorID: "3", DisplayName: "王五", Rating: 5, Body: "杨枝甘露是我的最爱，满记的做得特别正宗，芒果新鲜，甜度适中。", CreatedAt: ts("2026-02-08T09:15:00Z"), LikeCount: 8},
		{ID: "4", ProductID: "3", AuthorID: "4", DisplayName: "赵六", Rating: 4, Body: "白雪冰口感清爽，夏天吃特别解暑，推荐给大家。", CreatedAt: ts("2026-02-07T14:45:00Z"), LikeCount: 3},
	}
}

func CartLines() []domain.CartLine {
	return []domain.CartLine{
		{ItemID: "1", DisplayName: "满记椰皇", ImageRef: "/images/product-2.jpg", UnitPrice: price("35.9"), Quantity: 1, Selected: true},
		{ItemID: "2", DisplayName: "麻薯抹茶奶冻", ImageRef: "/images/product-5.jpg", UnitPrice: price("25.9"), Quantity: 1, Selected: true},
		{ItemID: "3", DisplayName: "紫薯芋泥荷花挞", ImageRef: "/images/product-4.jpg", UnitPrice: price("28.0"), Quantity: 1, Selected: true},
	}
}
