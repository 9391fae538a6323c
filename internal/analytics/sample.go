package analytics

// DefaultSalesTarget is the monthly revenue plan shown on the target card.
const DefaultSalesTarget int64 = 7_000_000

// SampleDataset returns the demo storefront figures for December 2024.
func SampleDataset() Dataset {
	return Dataset{
		Title:     "E-commerce Аналитика",
		Subtitle:  "Демонстрационный дашборд с данными за декабрь 2024",
		UpdatedAt: "30 декабря 2024",
		Daily: []DailyRecord{
			{Date: "01.12", Revenue: 145000, Orders: 42, Visitors: 1250},
			{Date: "02.12", Revenue: 132000, Orders: 38, Visitors: 1180},
			{Date: "03.12", Revenue: 168000, Orders: 51, Visitors: 1420},
			{Date: "04.12", Revenue: 155000, Orders: 45, Visitors: 1350},
			{Date: "05.12", Revenue: 189000, Orders: 58, Visitors: 1580},
			{Date: "06.12", Revenue: 201000, Orders: 62, Visitors: 1720},
			{Date: "07.12", Revenue: 178000, Orders: 54, Visitors: 1490},
			{Date: "08.12", Revenue: 165000, Orders: 48, Visitors: 1380},
			{Date: "09.12", Revenue: 142000, Orders: 41, Visitors: 1220},
			{Date: "10.12", Revenue: 198000, Orders: 59, Visitors: 1650},
			{Date: "11.12", Revenue: 215000, Orders: 67, Visitors: 1820},
			{Date: "12.12", Revenue: 228000, Orders: 72, Visitors: 1950},
			{Date: "13.12", Revenue: 195000, Orders: 58, Visitors: 1680},
			{Date: "14.12", Revenue: 182000, Orders: 55, Visitors: 1520},
			{Date: "15.12", Revenue: 210000, Orders: 65, Visitors: 1780},
			{Date: "16.12", Revenue: 235000, Orders: 74, Visitors: 2010},
			{Date: "17.12", Revenue: 248000, Orders: 78, Visitors: 2150},
			{Date: "18.12", Revenue: 220000, Orders: 68, Visitors: 1890},
			{Date: "19.12", Revenue: 205000, Orders: 63, Visitors: 1750},
			{Date: "20.12", Revenue: 192000, Orders: 57, Visitors: 1620},
			{Date: "21.12", Revenue: 268000, Orders: 85, Visitors: 2320},
			{Date: "22.12", Revenue: 285000, Orders: 92, Visitors: 2480},
			{Date: "23.12", Revenue: 312000, Orders: 98, Visitors: 2720},
			{Date: "24.12", Revenue: 345000, Orders: 112, Visitors: 3050},
			{Date: "25.12", Revenue: 128000, Orders: 35, Visitors: 980},
			{Date: "26.12", Revenue: 298000, Orders: 95, Visitors: 2650},
			{Date: "27.12", Revenue: 275000, Orders: 88, Visitors: 2420},
			{Date: "28.12", Revenue: 258000, Orders: 82, Visitors: 2280},
			{Date: "29.12", Revenue: 242000, Orders: 76, Visitors: 2120},
			{Date: "30.12", Revenue: 265000, Orders: 84, Visitors: 2350},
		},
		Categories: []CategoryRecord{
			{Category: "electronics", Name: "Электроника", Value: 2850000},
			{Category: "clothing", Name: "Одежда", Value: 1920000},
			{Category: "home", Name: "Дом и сад", Value: 1450000},
			{Category: "sports", Name: "Спорт", Value: 980000},
			{Category: "beauty", Name: "Красота", Value: 720000},
		},
		Products: []ProductRecord{
			{Product: "iPhone 15 Pro", Revenue: 1245000, Units: 415},
			{Product: "Samsung S24 Ultra", Revenue: 989000, Units: 342},
			{Product: "MacBook Air M3", Revenue: 876000, Units: 219},
			{Product: "AirPods Pro 2", Revenue: 654000, Units: 872},
			{Product: "PlayStation 5", Revenue: 598000, Units: 199},
			{Product: "Nike Air Max", Revenue: 445000, Units: 593},
			{Product: "iPad Pro 12.9", Revenue: 412000, Units: 137},
			{Product: "Dyson V15", Revenue: 387000, Units: 129},
			{Product: "Apple Watch 9", Revenue: 356000, Units: 356},
			{Product: "Sony WH-1000XM5", Revenue: 298000, Units: 398},
		},
		Funnel: []FunnelStage{
			{Stage: "visitors", Label: "Посетители", Value: 52840},
			{Stage: "views", Label: "Просмотр товара", Value: 31704},
			{Stage: "cart", Label: "Добавление в корзину", Value: 12682},
			{Stage: "checkout", Label: "Оформление заказа", Value: 5073},
			{Stage: "purchase", Label: "Покупка", Value: 1928},
		},
		Traffic: []TrafficSource{
			{Source: "organic", Name: "Органический поиск", Visitors: 18540},
			{Source: "direct", Name: "Прямой заход", Visitors: 12680},
			{Source: "social", Name: "Соцсети", Visitors: 9450},
			{Source: "email", Name: "Email рассылки", Visitors: 6820},
			{Source: "ads", Name: "Реклама", Visitors: 5350},
		},
		Regions: []RegionRecord{
			{Region: "Москва", Revenue: 3250000, Orders: 1024},
			{Region: "СПб", Revenue: 1890000, Orders: 612},
			{Region: "Новосибирск", Revenue: 720000, Orders: 245},
			{Region: "Екатеринбург", Revenue: 680000, Orders: 228},
			{Region: "Казань", Revenue: 540000, Orders: 185},
			{Region: "Краснодар", Revenue: 480000, Orders: 162},
			{Region: "Самара", Revenue: 420000, Orders: 142},
			{Region: "Другие", Revenue: 940000, Orders: 330},
		},
	}
}
