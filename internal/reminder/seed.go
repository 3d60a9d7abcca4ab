package reminder

// Every new category starts with this custom subcategory.
const (
	customSubKey  = "настраиваемый"
	customSubName = "🔄 Настраиваемый таймер"
)

func fixedSub(key, name string, seconds int64, message string) *Subcategory {
	return &Subcategory{
		Key:   key,
		Name:  name,
		Kind:  KindFixed,
		Fixed: &FixedSpec{Seconds: seconds, Message: message},
	}
}

func customSub() *Subcategory {
	return &Subcategory{Key: customSubKey, Name: customSubName, Kind: KindCustom}
}

// seedTree returns the default category set installed on first start, when
// no category snapshot exists yet.
func seedTree() *tree {
	t := newTree()

	add := func(key, name string, subs ...*Subcategory) {
		c := &Category{Key: key, Name: name, Subs: make(map[string]*Subcategory, len(subs))}
		for _, s := range subs {
			c.Subs[s.Key] = s
			c.Order = append(c.Order, s.Key)
		}
		t.cats[key] = c
		t.order = append(t.order, key)
	}

	add("таймер", "⏰ Таймер",
		customSub(),
		fixedSub("оплата_дома", "🏠 Оплата дома", 60, "Время оплатить дом!"),
		fixedSub("оплата_недвижимости", "🏢 Оплата недвижимости", 120, "Время оплатить недвижимость!"),
	)
	add("фарм", "🌾 Фарм",
		customSub(),
		fixedSub("билетики", "🎫 Билетики", 3600, "Проверить билетики!"),
		fixedSub("квесты", "📜 Квесты", 7200, "Время квестов!"),
	)
	add("задания_клуба", "🏁 Задания клуба",
		customSub(),
		fixedSub("реднеки", "🤠 Реднеки", 60, "Задание Реднеки!"),
		fixedSub("мото_клуб", "🏍️ Мото клуб", 60, "Задание Мото-клуба!"),
		fixedSub("epsilon", "👽 Epsilon", 60, "Задание Epsilon!"),
	)

	return t
}
