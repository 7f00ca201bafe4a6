package catalog

func (w *Workspace) dishIndex(id uint) int {
	for i, d := range w.snap.Dishes {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (w *Workspace) articleIndex(id uint) int {
	for i, a := range w.snap.Articles {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (w *Workspace) recipeIndex(id uint) int {
	for i, r := range w.snap.Recipes {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (w *Workspace) reservationIndex(id uint) int {
	for i, r := range w.snap.Reservations {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (w *Workspace) categoryIndex(name string) int {
	for i, c := range w.snap.Categories {
		if c.Name == name {
			return i
		}
	}
	return -1
}
