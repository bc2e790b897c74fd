package catalog

import "github.com/okian/dailyboss/internal/domain/model"

// defaultRegions is the built-in weekly boss pool. Names are the ones
// history rows have always been written with, so they must not change.
// Hypostases carry a lower weight than the rest.
var defaultRegions = []Region{ //nolint:gochecknoglobals // static data
	{Name: "蒙德", Items: []model.Item{ // Mondstadt
		{Name: "无相之风", Weight: 4},
		{Name: "无相之雷", Weight: 4},
		{Name: "急冻树", Weight: 5},
		{Name: "无相之冰", Weight: 4},
	}},
	{Name: "璃月", Items: []model.Item{ // Liyue
		{Name: "无相之岩", Weight: 4},
		{Name: "纯水精灵", Weight: 5},
		{Name: "爆炎树", Weight: 5},
		{Name: "古岩龙蜥", Weight: 5},
		{Name: "层岩 遗迹巨蛇", Weight: 5},
		{Name: "隐山猊兽", Weight: 5},
	}},
	{Name: "稻妻", Items: []model.Item{ // Inazuma
		{Name: "魔偶剑鬼", Weight: 5},
		{Name: "无相之火", Weight: 4},
		{Name: "恒常机关阵列", Weight: 5},
		{Name: "无相之水", Weight: 4},
		{Name: "雷音权现", Weight: 5},
		{Name: "黄金王兽", Weight: 5},
		{Name: "深海龙蜥之群", Weight: 5},
	}},
	{Name: "须弥", Items: []model.Item{ // Sumeru
		{Name: "掣电树", Weight: 5},
		{Name: "翠翎恐蕈", Weight: 5},
		{Name: "兆载永劫龙兽", Weight: 5},
		{Name: "半永恒统辖矩阵", Weight: 5},
		{Name: "无相之草", Weight: 4},
		{Name: "风蚀沙虫", Weight: 5},
		{Name: "深罪浸礼者", Weight: 5},
	}},
	{Name: "枫丹", Items: []model.Item{ // Fontaine
		{Name: "冰风组曲上", Weight: 5},
		{Name: "冰风组曲下", Weight: 5},
		{Name: "铁甲熔火帝皇", Weight: 5},
		{Name: "实验性场力发生装置", Weight: 5},
		{Name: "千年珍珠骏麟", Weight: 5},
		{Name: "水型幻灵", Weight: 5},
		{Name: "魔像督军", Weight: 5},
	}},
	{Name: "纳塔", Items: []model.Item{ // Natlan
		{Name: "贪食匿叶龙山王", Weight: 5},
		{Name: "金焰绒翼龙暴君", Weight: 5},
		{Name: "秘源机兵·构型械", Weight: 5},
		{Name: "深邃摹结株", Weight: 5},
	}},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultRegions)
	if err != nil {
		panic("catalog: invalid built-in catalog: " + err.Error())
	}
	return c
}
