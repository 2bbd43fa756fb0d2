package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pricegov/internal/models"
	"pricegov/internal/repositories"
)

type DistrictService struct {
	DistrictRepo *repositories.DistrictRepository
}

// districtIndex resolves hierarchy-derived fields for a snapshot of all districts.
type districtIndex struct {
	byID     map[int64]models.District
	children map[int64][]int64
}

func newDistrictIndex(all []models.District) districtIndex {
	idx := districtIndex{byID: make(map[int64]models.District, len(all)), children: map[int64][]int64{}}
	for _, d := range all {
		idx.byID[d.ID] = d
		if d.ParentID != nil && d.IsActive {
			idx.children[*d.ParentID] = append(idx.children[*d.ParentID], d.ID)
		}
	}
	return idx
}

// ancestors walks parents from the nearest up; a cycle stops the walk.
func (idx districtIndex) ancestors(d models.District) []models.District {
	var out []models.District
	seen := map[int64]bool{d.ID: true}
	for d.ParentID != nil {
		p, ok := idx.byID[*d.ParentID]
		if !ok || seen[p.ID] {
			break
		}
		seen[p.ID] = true
		out = append(out, p)
		d = p
	}
	return out
}

func (idx districtIndex) decorate(d models.District) models.District {
	chain := idx.ancestors(d)
	names := make([]string, 0, len(chain)+1)
	for i := len(chain) - 1; i >= 0; i-- {
		names = append(names, chain[i].Name)
	}
	d.FullPath = strings.Join(append(names, d.Name), " > ")
	d.Level = len(chain)
	d.ChildrenCount = len(idx.children[d.ID])
	return d
}

func (idx districtIndex) isDescendant(candidate, of int64) bool {
	d, ok := idx.byID[candidate]
	if !ok {
		return false
	}
	for _, a := range idx.ancestors(d) {
		if a.ID == of {
			return true
		}
	}
	return false
}

func (s *DistrictService) index(ctx context.Context) (districtIndex, error) {
	all, err := s.DistrictRepo.All(ctx)
	if err != nil {
		return districtIndex{}, err
	}
	return newDistrictIndex(all), nil
}

func (s *DistrictService) List(ctx context.Context, f models.DistrictFilter) ([]models.District, error) {
	list, err := s.DistrictRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.District, 0, len(list))
	for _, d := range list {
		out = append(out, idx.decorate(d))
	}
	return out, nil
}

func (s *DistrictService) Get(ctx context.Context, id int64) (models.District, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return models.District{}, err
	}
	d, ok := idx.byID[id]
	if !ok {
		return models.District{}, &models.NotFoundError{Message: "District not found"}
	}
	return idx.decorate(d), nil
}

// GetActive is used by lookups that must ignore soft-deleted districts.
func (s *DistrictService) GetActive(ctx context.Context, id int64) (models.District, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return models.District{}, err
	}
	if !d.IsActive {
		return models.District{}, &models.NotFoundError{Message: "District not found"}
	}
	return d, nil
}

func (s *DistrictService) Create(ctx context.Context, in models.DistrictInput) (models.District, error) {
	d := models.District{IsActive: true}
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}
	if in.Name == nil || in.Code == nil {
		return models.District{}, models.Invalid("Name and code are required.")
	}
	d.Name = strings.TrimSpace(*in.Name)
	d.Code = strings.ToUpper(strings.TrimSpace(*in.Code))
	d.ParentID = in.ParentID
	if err := s.validate(ctx, d); err != nil {
		return models.District{}, err
	}
	created, err := s.DistrictRepo.Create(ctx, d)
	if err != nil {
		return models.District{}, err
	}
	return s.Get(ctx, created.ID)
}

func (s *DistrictService) Update(ctx context.Context, id int64, in models.DistrictInput) (models.District, error) {
	d, err := s.DistrictRepo.GetByID(ctx, id)
	if err != nil {
		return models.District{}, err
	}
	if in.Name != nil {
		d.Name = strings.TrimSpace(*in.Name)
	}
	if in.Code != nil {
		d.Code = strings.ToUpper(strings.TrimSpace(*in.Code))
	}
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}
	if in.ClearParent {
		d.ParentID = nil
	} else if in.ParentID != nil {
		d.ParentID = in.ParentID
	}
	if err := s.validate(ctx, d); err != nil {
		return models.District{}, err
	}
	if _, err := s.DistrictRepo.Update(ctx, d); err != nil {
		return models.District{}, err
	}
	return s.Get(ctx, id)
}

func (s *DistrictService) validate(ctx context.Context, d models.District) error {
	if err := firstErr(
		minLen("District name", d.Name, 2),
		maxLen("District name", d.Name, 100),
		maxLen("District code", d.Code, 10),
	); err != nil {
		return err
	}
	if d.Code == "" {
		return models.Invalid("District code is required.")
	}
	exists, err := s.DistrictRepo.CodeExists(ctx, d.Code, d.ID)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrDuplicateCode
	}
	if d.ParentID == nil {
		return nil
	}
	if *d.ParentID == d.ID {
		return models.Invalid("A district cannot be its own parent.")
	}
	idx, err := s.index(ctx)
	if err != nil {
		return err
	}
	parent, ok := idx.byID[*d.ParentID]
	if !ok || !parent.IsActive {
		return models.Invalid("Parent district does not exist.")
	}
	if d.ID != 0 && idx.isDescendant(parent.ID, d.ID) {
		return models.Invalid("A district cannot be moved under one of its descendants.")
	}
	return nil
}

func (s *DistrictService) Delete(ctx context.Context, id int64) error {
	return s.DistrictRepo.SoftDelete(ctx, id)
}

// Tree returns the active hierarchy starting from root districts.
func (s *DistrictService) Tree(ctx context.Context) ([]models.DistrictNode, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	var roots []models.District
	for _, d := range idx.byID {
		if d.IsActive && d.ParentID == nil {
			roots = append(roots, d)
		}
	}
	sortDistricts(roots)

	out := make([]models.DistrictNode, 0, len(roots))
	for _, r := range roots {
		out = append(out, idx.node(r, map[int64]bool{}))
	}
	return out, nil
}

func (idx districtIndex) node(d models.District, seen map[int64]bool) models.DistrictNode {
	seen[d.ID] = true
	d = idx.decorate(d)
	n := models.DistrictNode{ID: d.ID, Name: d.Name, Code: d.Code, FullPath: d.FullPath, Level: d.Level,
		Children: []models.DistrictNode{}}

	var kids []models.District
	for _, id := range idx.children[d.ID] {
		if !seen[id] {
			kids = append(kids, idx.byID[id])
		}
	}
	sortDistricts(kids)
	for _, k := range kids {
		n.Children = append(n.Children, idx.node(k, seen))
	}
	return n
}

func (s *DistrictService) Children(ctx context.Context, id int64) ([]models.District, error) {
	if _, err := s.GetActive(ctx, id); err != nil {
		return nil, err
	}
	return s.List(ctx, models.DistrictFilter{ParentID: &id})
}

// DeletionCheck reports what references the district. Retailers block
// deletion; everything else is informational.
func (s *DistrictService) DeletionCheck(ctx context.Context, id int64) (models.DeletionCheck, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return models.DeletionCheck{}, err
	}
	usage, err := s.DistrictRepo.Usage(ctx, id)
	if err != nil {
		return models.DeletionCheck{}, err
	}

	var check models.DeletionCheck
	check.AffectedObjects = usage
	check.DistrictInfo.Name = d.Name
	check.DistrictInfo.Code = d.Code
	check.DistrictInfo.FullPath = d.FullPath
	check.CanDelete = usage.Retailers == 0
	if check.CanDelete {
		check.Reason = "District can be safely deleted"
	} else {
		check.Reason = fmt.Sprintf("Cannot delete district: %d retailers are assigned to it", usage.Retailers)
	}
	return check, nil
}

func sortDistricts(ds []models.District) {
	sort.Slice(ds, func(i, j int) bool {
		if ds[i].Name != ds[j].Name {
			return ds[i].Name < ds[j].Name
		}
		return ds[i].ID < ds[j].ID
	})
}
