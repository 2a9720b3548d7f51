package services

import (
	"regexp"

	"github.com/hshy1839/seongji-erp-server/internal/spreadsheet"
)

var (
	itemNameAliases = []string{"품명", "품목명", "제품명", "자재명", "item", "itemname", "name"}
	itemTypeAliases = []string{"품목유형", "itemtype", "type", "공정"}
	carTypeAliases  = []string{"차종", "cartype", "차명", "vehicle", "model"}
	statusAliases   = []string{"상태", "status"}
	remarkAliases   = []string{"비고", "메모", "remark", "note"}
)

func orderSchema() *spreadsheet.Schema {
	return &spreadsheet.Schema{
		Resource: "orders",
		Fields: []spreadsheet.Field{
			{Name: "orderCompany", Aliases: []string{"발주처", "주문처", "거래처", "발주회사", "ordercompany", "company"}},
			{Name: "orderDate", Aliases: []string{"발주일", "주문일", "일자", "date", "orderdate", "납품일자", "납입일", "납입일자"}},
			{Name: "quantity", Aliases: []string{"수량", "발주수량", "총발주수량", "총발주량", "qty", "quantity", "총수량"}},
			{Name: "itemCode", Aliases: []string{"품번", "코드", "품목코드", "productcode", "code", "partnumber", "oem", "oemcode", "모비스품번"}},
			{Name: "itemName", Aliases: itemNameAliases},
			{Name: "category", Aliases: []string{"대분류", "카테고리", "분류", "category"}},
			{Name: "requester", Aliases: []string{"요청자", "담당자", "requester"}},
			{Name: "status", Aliases: statusAliases},
			{Name: "remark", Aliases: remarkAliases},
			{Name: "itemType", Aliases: itemTypeAliases},
			{Name: "carType", Aliases: carTypeAliases},
			{Name: "division", Aliases: []string{"구분", "division", "출하구분"}},
		},
		Profiles: []spreadsheet.Profile{
			{Name: "standard", Probe: []string{"orderCompany", "orderDate", "quantity"}, MinHits: 2, Required: []string{"quantity"}},
			{Name: "mobis-simple", Probe: []string{"itemCode", "division", "quantity"}, MinHits: 2, Required: []string{"itemCode", "quantity"}},
		},
		SheetNames: []string{"발주수량", "총발주수량", "발주", "orders"},
		SheetBonus: regexp.MustCompile(`(?i)발주|order`),
	}
}

func deliverySchema() *spreadsheet.Schema {
	return &spreadsheet.Schema{
		Resource: "deliveries",
		Fields: []spreadsheet.Field{
			{Name: "deliveryCompany", Aliases: []string{"납품처", "납입처", "거래처", "납품회사", "deliverycompany", "company"}},
			{Name: "deliveryDate", Aliases: []string{"납품일", "납입일", "일자", "date", "deliverydate"}},
			{Name: "quantity", Aliases: []string{"수량", "납품수량", "납입수량", "qty", "quantity", "총수량"}},
			{Name: "itemCode", Aliases: []string{"품번", "코드", "품목코드", "productcode", "code", "partnumber", "oem", "oemcode"}},
			{Name: "itemName", Aliases: itemNameAliases},
			{Name: "category", Aliases: []string{"대분류", "카테고리", "분류", "category"}},
			{Name: "requester", Aliases: []string{"요청자", "담당자", "requester", "입고담당", "수령자"}},
			{Name: "status", Aliases: statusAliases},
			{Name: "remark", Aliases: remarkAliases},
			{Name: "itemType", Aliases: itemTypeAliases},
			{Name: "carType", Aliases: carTypeAliases},
			{Name: "division", Aliases: []string{"구분", "division"}},
		},
		Profiles: []spreadsheet.Profile{{
			Name:     "standard",
			Probe:    []string{"deliveryCompany", "deliveryDate", "quantity"},
			MinHits:  2,
			Required: []string{"deliveryCompany", "deliveryDate", "quantity"},
		}},
		SheetNames: []string{"납입", "납품", "deliveries"},
		SheetBonus: regexp.MustCompile(`(?i)납입|납품|deliver`),
	}
}

func shipmentSchema() *spreadsheet.Schema {
	return &spreadsheet.Schema{
		Resource: "shipments",
		Fields: []spreadsheet.Field{
			{Name: "shippingCompany", Aliases: []string{"납품처", "출하처", "거래처", "납품회사", "출하회사", "업체", "회사", "고객사", "shippingcompany"}},
			{Name: "shippingDate", Aliases: []string{"출하일", "출하일자", "납품일자", "납품일", "납입일자", "주문일", "일자", "날짜", "발주일자", "date", "shippingdate"}},
			{Name: "quantity", Aliases: []string{"수량", "납품수량", "총납품수량", "출하량", "총출하량", "총수량", "총발주수량", "qty", "quantity"}},
			{Name: "itemCode", Aliases: []string{"품번", "코드", "품목코드", "productcode", "code", "partnumber", "oem", "oemcode", "완제품품번"}},
			{Name: "itemName", Aliases: itemNameAliases},
			{Name: "category", Aliases: []string{"대분류", "카테고리", "분류", "category"}},
			{Name: "requester", Aliases: []string{"요청자", "담당자", "requester"}},
			{Name: "status", Aliases: statusAliases},
			{Name: "remark", Aliases: remarkAliases},
			{Name: "itemType", Aliases: itemTypeAliases},
			{Name: "carType", Aliases: carTypeAliases},
			{Name: "division", Aliases: []string{"구분", "출하구분", "division"}},
		},
		Profiles: []spreadsheet.Profile{{
			Name:     "standard",
			Probe:    []string{"shippingCompany", "shippingDate", "quantity"},
			MinHits:  2,
			Required: []string{"shippingCompany", "shippingDate", "quantity"},
		}},
		ScanRows:   30,
		SheetNames: []string{"출하수량"},
		SheetBonus: regexp.MustCompile(`(?i)출하|납품|ship`),
	}
}

var stockKeyFields = []string{"customer", "carType", "deliveryTo", "division", "partNumber", "materialCode"}

func stockSchema() *spreadsheet.Schema {
	return &spreadsheet.Schema{
		Resource: "stocks",
		Fields: []spreadsheet.Field{
			{Name: "customer", Aliases: []string{"발주처", "거래처", "주문처", "customer", "ordercompany", "company"}},
			{Name: "carType", Aliases: []string{"차종", "차명", "cartype", "vehicle", "model"}},
			{Name: "deliveryTo", Aliases: []string{"납품처", "납입처", "shipto", "deliveryto", "destination"}},
			{Name: "division", Aliases: []string{"구분", "현수", "내수", "수출", "division", "type"}},
			{Name: "partNumber", Aliases: []string{"품번", "품목코드", "productcode", "code", "partnumber", "oem", "oemcode"}},
			{Name: "materialName", Aliases: []string{"자재명", "품명", "item", "name", "materialname"}},
			{Name: "materialCode", Aliases: []string{"자재품번", "자재코드", "소재코드", "materialcode", "mcode", "subcode"}},
			{Name: "currentQty", Aliases: []string{"재고수량", "현재고", "currentqty", "stock", "qty", "수량"}},
			{Name: "bomQtyPer", Aliases: []string{"소요량", "소요", "bom", "bomqty", "perunit", "1ea소요", "1ea"}},
			{Name: "openingQty", Aliases: []string{"기초재고", "opening", "openingqty"}},
			{Name: "inboundQty", Aliases: []string{"자재입고", "입고", "inbound", "inboundqty"}},
			{Name: "usedQty", Aliases: []string{"생산실적", "실적", "사용수량", "소요누적", "used", "usedqty"}},
			{Name: "remark", Aliases: []string{"비고", "메모", "remark"}},
			{Name: "uom", Aliases: []string{"단위", "uom", "unit"}},
		},
		Profiles: []spreadsheet.Profile{
			{Name: "standard", Probe: stockKeyFields, MinHits: 3, Required: stockKeyFields},
		},
		ScanRows:   25,
		SheetNames: []string{"재고", "stocks", "stock", "BOM", "sill"},
		SheetBonus: regexp.MustCompile(`(?i)재고|stock|bom`),
	}
}

func shortageSchema() *spreadsheet.Schema {
	return &spreadsheet.Schema{
		Resource: "shortages",
		Fields: []spreadsheet.Field{
			{Name: "division", Aliases: []string{"구분", "division", "분류", "대분류", "카테고리"}},
			{Name: "material", Aliases: []string{"자재", "material", "자재명", "품명", "제품명", "item", "name"}},
			{Name: "materialCode", Aliases: []string{"자재품번", "materialcode", "품번", "코드", "code", "partnumber", "oem", "oemcode", "모비스품번"}},
			{Name: "supplier", Aliases: []string{"자재업체", "supplier", "업체", "거래처", "공급사", "vendor"}},
			{Name: "inQty", Aliases: []string{"입고수량", "inqty", "입고", "입고량", "입고합계"}},
			{Name: "stockQty", Aliases: []string{"재고수량", "stockqty", "재고", "잔량", "stock", "onhand", "현재고"}},
		},
		Profiles: []spreadsheet.Profile{{
			Name:     "standard",
			Probe:    []string{"division", "material", "materialCode"},
			MinHits:  2,
			Required: []string{"division", "material", "materialCode"},
		}},
		ScanRows:   50,
		SheetNames: []string{"부족수량", "shortage", "재고", "stock", "자재", "sheet1"},
		SheetBonus: regexp.MustCompile(`(?i)부족|shortage`),
	}
}

func productionSchema() *spreadsheet.Schema {
	return &spreadsheet.Schema{
		Resource: "productions",
		Fields: []spreadsheet.Field{
			{Name: "partNo", Aliases: []string{"품번", "p/no", "partno", "partnumber", "code", "oem", "pno", "모비스품번"}},
			{Name: "division", Aliases: []string{"구분", "division", "type", "category"}},
			{Name: "qty", Aliases: []string{"수량", "생산수량", "qty", "quantity", "납품수량", "소요량"}},
			{Name: "customer", Aliases: []string{"고객사", "발주처", "거래처", "customer"}},
			{Name: "carType", Aliases: carTypeAliases},
			{Name: "productNo", Aliases: []string{"완제품품번", "제품품번", "productno", "product"}},
			{Name: "remark", Aliases: remarkAliases},
		},
		Profiles: []spreadsheet.Profile{
			{Name: "standard", Probe: []string{"partNo", "qty", "division"}, MinHits: 2, Required: []string{"partNo", "qty"}},
		},
		SheetNames: []string{"생산실적", "생산", "production", "prod", "sheet1"},
		SheetBonus: regexp.MustCompile(`(?i)생산|production|prod`),
	}
}
