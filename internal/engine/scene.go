package engine

// Scene is the gameplay-side list of live objects. Objects destroyed while
// something iterates the scene (a contact listener, a projectile sweep) are
// only marked; FlushDestroyed removes them at a safe point.
type Scene struct {
	Name        string
	GameObjects []*GameObject
	uidMap      map[uint64]*GameObject
	pending     []*GameObject

	OnAdded   EventWithArg[*GameObject]
	OnRemoved EventWithArg[*GameObject]
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:        name,
		GameObjects: make([]*GameObject, 0),
		uidMap:      make(map[uint64]*GameObject),
	}
}

func (s *Scene) AddGameObject(g *GameObject) {
	if s.uidMap == nil {
		s.uidMap = make(map[uint64]*GameObject)
	}
	g.Scene = s
	s.GameObjects = append(s.GameObjects, g)
	s.uidMap[g.UID] = g
	s.OnAdded.Invoke(g)
}

// RemoveGameObject removes g immediately. Do not call it while ranging over
// GameObjects; use Destroy instead.
func (s *Scene) RemoveGameObject(g *GameObject) {
	for i, obj := range s.GameObjects {
		if obj == g {
			s.GameObjects = append(s.GameObjects[:i], s.GameObjects[i+1:]...)
			delete(s.uidMap, g.UID)
			g.Scene = nil
			s.OnRemoved.Invoke(g)
			return
		}
	}
}

// Destroy deactivates g and queues it for removal. Destroying the same object
// twice queues it once.
func (s *Scene) Destroy(g *GameObject) {
	if g == nil || !g.Active {
		return
	}
	g.Active = false
	s.pending = append(s.pending, g)
}

// FlushDestroyed removes every queued object and returns how many were removed.
func (s *Scene) FlushDestroyed() int {
	n := 0
	for _, g := range s.pending {
		if g.Scene == s {
			s.RemoveGameObject(g)
			n++
		}
	}
	s.pending = s.pending[:0]
	return n
}

func (s *Scene) FindByUID(uid uint64) *GameObject {
	return s.uidMap[uid]
}

func (s *Scene) FindByName(name string) *GameObject {
	for _, g := range s.GameObjects {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func (s *Scene) FindByTag(tag string) []*GameObject {
	var result []*GameObject
	for _, g := range s.GameObjects {
		if g.HasTag(tag) {
			result = append(result, g)
		}
	}
	return result
}
