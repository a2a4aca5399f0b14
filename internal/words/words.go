// Package words holds the built-in category and word catalogue used to seed
// the database.
package words

type Category struct {
	Slug  string
	Name  string
	Words []string
}

func Catalogue() []Category {
	return []Category{
		{
			Slug: "countries",
			Name: "Countries",
			Words: []string{
				"France", "England", "Japan", "Brazil", "Canada", "Egypt", "India",
				"Germany", "Kenya", "Mexico", "Norway", "Spain", "Sweden", "Turkey",
				"USA", "China", "Italy", "Australia", "Russia", "Argentina",
			},
		},
		{
			Slug: "animals",
			Name: "Animals",
			Words: []string{
				"Lion", "Elephant", "Giraffe", "Panda", "Tiger", "Kangaroo",
				"Penguin", "Zebra", "Whale", "Dolphin", "Eagle", "Fox", "Owl",
				"Shark", "Bear", "Rabbit", "Crocodile", "Hippo", "Koala", "Wolf",
			},
		},
		{
			Slug: "food",
			Name: "Food",
			Words: []string{
				"Pizza", "Burger", "Sushi", "Pasta", "Taco", "Curry", "Salad",
				"Steak", "Pancake", "Ramen", "Dumpling", "Burrito", "Falafel",
				"Paella", "Donut", "Croissant", "Ice Cream", "Cheesecake",
				"Sandwich", "BBQ",
			},
		},
		{
			Slug: "objects",
			Name: "Objects",
			Words: []string{
				"Laptop", "Backpack", "Umbrella", "Guitar", "Camera", "Watch",
				"Bicycle", "Headphones", "Book", "Lamp", "Wallet", "Glasses",
				"Bottle", "Key", "Chair", "Table", "Microwave", "Phone", "Pillow",
				"Scissors",
			},
		},
		{
			Slug: "brands",
			Name: "Brands",
			Words: []string{
				"Nike", "Apple", "Samsung", "Adidas", "Coca-Cola", "Pepsi",
				"Google", "Microsoft", "Tesla", "Toyota", "Sony", "Intel",
				"Amazon", "Facebook", "BMW", "Mercedes", "Starbucks", "Ikea",
				"Netflix", "Disney",
			},
		},
	}
}
