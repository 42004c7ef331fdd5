// Package seed generates random social graphs for development databases and
// loads them into a store.
package seed

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"student-connect/backend/internal/constants"
	"student-connect/backend/internal/models"
	"student-connect/backend/internal/store"
)

// Counts sizes a generated dataset
type Counts struct {
	Students int
	Schools  int
	Topics   int
	Posts    int
	Comments int

	// Friendships is the number of reciprocal friend pairs
	Friendships int
	// Likes is the number of likes_post and of likes_comment edges attempted
	Likes int
}

// CountsFor scales every collection from a student count
func CountsFor(students int) Counts {
	return Counts{
		Students:    students,
		Schools:     max(1, students/10),
		Topics:      max(1, min(students/5, len(languages)+len(subjectPrefixes)*len(subjectSuffixes))),
		Posts:       students,
		Comments:    students * 2,
		Friendships: students * 2,
		Likes:       students * 3,
	}
}

// Validate rejects counts that cannot produce a connected dataset
func (c Counts) Validate() error {
	for name, n := range map[string]int{
		"students": c.Students, "schools": c.Schools, "topics": c.Topics,
		"posts": c.Posts, "comments": c.Comments, "friendships": c.Friendships, "likes": c.Likes,
	} {
		if n < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.Students == 0 && (c.Posts > 0 || c.Comments > 0) {
		return fmt.Errorf("posts and comments need at least one student")
	}
	if c.Posts == 0 && c.Comments > 0 {
		return fmt.Errorf("comments need at least one post")
	}
	return nil
}

// Dataset is a generated graph ready to be loaded
type Dataset struct {
	Documents []store.Document
	Edges     []store.Edge
}

// Count returns how many documents of col the dataset holds
func (d Dataset) Count(col store.Collection) int {
	n := 0
	for _, doc := range d.Documents {
		if doc.Collection == col {
			n++
		}
	}
	return n
}

// Generator produces datasets. The same seed always yields the same dataset.
type Generator struct {
	src *rand.ChaCha8
	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed
func NewGenerator(seed uint64) *Generator {
	var key [32]byte
	for i := range 4 {
		for j := range 8 {
			key[i*8+j] = byte(seed >> (8 * j))
		}
		seed = seed*6364136223846793005 + 1442695040888963407
	}
	src := rand.NewChaCha8(key)
	return &Generator{src: src, rng: rand.New(src)}
}

// Generate builds a dataset of the given size
func (g *Generator) Generate(c Counts) (Dataset, error) {
	if err := c.Validate(); err != nil {
		return Dataset{}, err
	}

	b := &builder{g: g, seen: map[string]bool{}}

	students := b.many(c.Students, g.student)
	schools := b.many(c.Schools, g.school)
	topics := b.many(c.Topics, g.topic)
	posts := b.many(c.Posts, g.post)
	comments := b.many(c.Comments, g.comment)

	for range c.Friendships {
		if len(students) < 2 {
			break
		}
		a, z := pick(g, students), pick(g, students)
		if a == z {
			continue
		}
		b.link(a, z, store.Friend)
		b.link(z, a, store.Friend)
	}

	for _, s := range students {
		if len(schools) > 0 {
			b.link(s, pick(g, schools), store.StudiesIn)
		}
		for range g.rng.IntN(3) + 1 {
			if len(topics) > 0 {
				b.link(s, pick(g, topics), store.InterestedIn)
			}
		}
	}

	for _, p := range posts {
		b.link(pick(g, students), p, store.MakesPost)
	}
	for _, cm := range comments {
		b.link(pick(g, posts), cm, store.PostHasComment)
		b.link(pick(g, students), cm, store.MakesComment)
	}

	for range c.Likes {
		if len(students) == 0 {
			break
		}
		if len(posts) > 0 {
			b.link(pick(g, students), pick(g, posts), store.LikesPost)
		}
		if len(comments) > 0 {
			b.link(pick(g, students), pick(g, comments), store.LikesComment)
		}
	}

	return b.ds, nil
}

func (g *Generator) key() string {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		// ChaCha8 reads never fail
		panic(err)
	}
	return id.String()
}

func (g *Generator) student() models.Entity {
	first, last := oneOf(g, firstNames), oneOf(g, lastNames)

	from := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2000, 12, 29, 0, 0, 0, 0, time.UTC)
	dob := models.NewDate(from.Add(time.Duration(g.rng.Int64N(int64(to.Sub(from))))))

	return models.Student{
		Name:    first + " " + last,
		DOB:     &dob,
		Sex:     oneOf(g, []string{constants.SexMale, constants.SexFemale}),
		Address: g.address(oneOf(g, cities), oneOf(g, states)),
		Level:   oneOf(g, []string{constants.LevelUndergraduate, constants.LevelGraduate}),
	}
}

func (g *Generator) school() models.Entity {
	city, state := oneOf(g, cities), oneOf(g, states)

	name := "University of " + state + " at " + city
	if g.rng.IntN(2) == 0 {
		name = oneOf(g, streetNames) + " " + oneOf(g, institutionKinds)
	}
	return models.School{Name: name, Address: g.address(city, state)}
}

func (g *Generator) topic() models.Entity {
	if g.rng.IntN(2) == 0 {
		return models.Topic{Text: oneOf(g, languages)}
	}
	return models.Topic{Text: oneOf(g, subjectPrefixes) + " " + oneOf(g, subjectSuffixes)}
}

func (g *Generator) post() models.Entity {
	n := 3 + g.rng.IntN(3)
	sentences := make([]string, n)
	for i := range sentences {
		sentences[i] = g.sentence()
	}
	return models.Post{Text: strings.Join(sentences, " ")}
}

func (g *Generator) comment() models.Entity {
	return models.Comment{Text: g.sentence()}
}

func (g *Generator) address(city, state string) *models.Address {
	return &models.Address{
		Street: fmt.Sprintf("%d %s %s", 1+g.rng.IntN(9999), oneOf(g, streetNames), oneOf(g, streetSuffixes)),
		City:   city,
		State:  state,
	}
}

func (g *Generator) sentence() string {
	words := make([]string, 4+g.rng.IntN(8))
	for i := range words {
		words[i] = oneOf(g, loremWords)
	}
	s := strings.Join(words, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

// builder accumulates documents and deduplicated edges
type builder struct {
	g    *Generator
	ds   Dataset
	seen map[string]bool
}

func (b *builder) many(n int, gen func() models.Entity) []string {
	ids := make([]string, 0, n)
	for range n {
		entity := gen()
		fields, err := models.ToFields(entity)
		if err != nil {
			// Generated entities always encode
			panic(err)
		}
		doc := store.Document{Collection: entity.Collection(), Key: b.g.key(), Fields: fields}
		b.ds.Documents = append(b.ds.Documents, doc)
		ids = append(ids, doc.ID())
	}
	return ids
}

func (b *builder) link(from, to string, typ store.EdgeType) {
	id := from + "|" + to + "|" + string(typ)
	if b.seen[id] {
		return
	}
	b.seen[id] = true
	b.ds.Edges = append(b.ds.Edges, store.Edge{Key: b.g.key(), From: from, To: to, Type: typ})
}

func pick(g *Generator, ids []string) string {
	return ids[g.rng.IntN(len(ids))]
}

func oneOf(g *Generator, words []string) string {
	return words[g.rng.IntN(len(words))]
}
