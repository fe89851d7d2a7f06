package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop/models"
	"eshop/store"
)

const (
	uploadDir = "public/uploads"

	maxCountInStock = 255

	allProductsCacheKey = "all_products"
	productCachePrefix  = "product:"
	productCacheTTL     = 5 * time.Minute
)

// Only these image types are accepted for product uploads.
var fileTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

var errInvalidImageType = errors.New("invalid image type")

type ProductController struct {
	products   store.ProductStore
	categories store.CategoryStore
	cache      *redis.Client
}

// NewProductController wires the catalog handlers. cache may be nil,
// which disables the read-through product cache.
func NewProductController(products store.ProductStore, categories store.CategoryStore, cache *redis.Client) *ProductController {
	return &ProductController{products: products, categories: categories, cache: cache}
}

func (pc *ProductController) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()

	// localhost:8080/api/v1/products?categories=2342342,234234
	if raw := c.Query("categories"); raw != "" {
		var categoryIDs []primitive.ObjectID
		for _, part := range strings.Split(raw, ",") {
			id, err := primitive.ObjectIDFromHex(strings.TrimSpace(part))
			if err != nil {
				respondErrorMessage(c, http.StatusBadRequest, "Invalid category id in filter")
				return
			}
			categoryIDs = append(categoryIDs, id)
		}
		products, err := pc.products.ListProducts(ctx, categoryIDs)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, products)
		return
	}

	if pc.cache != nil {
		if cached, err := pc.cache.Get(ctx, allProductsCacheKey).Result(); err == nil {
			var products []models.Product
			if json.Unmarshal([]byte(cached), &products) == nil {
				respondData(c, http.StatusOK, products)
				return
			}
		}
	}

	products, err := pc.products.ListProducts(ctx, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	if pc.cache != nil {
		if payload, err := json.Marshal(products); err == nil {
			go pc.cache.Set(context.Background(), allProductsCacheKey, payload, productCacheTTL)
		}
	}
	respondData(c, http.StatusOK, products)
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	cacheKey := productCachePrefix + id.Hex()
	if pc.cache != nil {
		if cached, err := pc.cache.Get(ctx, cacheKey).Result(); err == nil {
			var product models.Product
			if json.Unmarshal([]byte(cached), &product) == nil {
				respondData(c, http.StatusOK, product)
				return
			}
		}
	}

	product, err := pc.products.GetProduct(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if pc.cache != nil {
		if payload, err := json.Marshal(product); err == nil {
			go pc.cache.Set(context.Background(), cacheKey, payload, productCacheTTL)
		}
	}
	respondData(c, http.StatusOK, product)
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	ctx := c.Request.Context()

	product, err := pc.bindProductForm(c)
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := pc.categories.GetCategory(ctx, product.CategoryID); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid Category")
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Image is required to add a new product!")
		return
	}
	imageURL, err := pc.saveUpload(c, file)
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	product.ID = primitive.NewObjectID()
	product.Image = imageURL
	product.DateCreated = time.Now().UTC()

	if err := pc.products.InsertProduct(ctx, product); err != nil {
		respondError(c, err)
		return
	}

	pc.invalidateCache(product.ID)
	respondData(c, http.StatusCreated, product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid Product Id!")
		return
	}

	product, err := pc.bindProductForm(c)
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := pc.categories.GetCategory(ctx, product.CategoryID); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid Category!")
		return
	}

	existing, err := pc.products.GetProduct(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	// Image is optional on update; keep the stored one when absent.
	product.Image = existing.Image
	if file, err := c.FormFile("image"); err == nil {
		imageURL, err := pc.saveUpload(c, file)
		if err != nil {
			respondErrorMessage(c, http.StatusBadRequest, err.Error())
			return
		}
		product.Image = imageURL
	}

	updated, err := pc.products.UpdateProduct(ctx, id, product)
	if err != nil {
		respondError(c, err)
		return
	}

	pc.invalidateCache(id)
	respondData(c, http.StatusOK, updated)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := pc.products.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondErrorMessage(c, http.StatusNotFound, "Product not found!")
			return
		}
		respondError(c, err)
		return
	}

	pc.invalidateCache(id)
	respondMessage(c, http.StatusOK, "The product is now deleted!")
}

func (pc *ProductController) GetProductCount(c *gin.Context) {
	count, err := pc.products.CountProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"productCount": count})
}

func (pc *ProductController) GetFeaturedProducts(c *gin.Context) {
	limit, err := strconv.ParseInt(c.Param("count"), 10, 64)
	if err != nil || limit < 0 {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid count")
		return
	}

	products, err := pc.products.ListFeatured(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, products)
}

// bindProductForm reads the multipart form fields shared by create and
// update.
func (pc *ProductController) bindProductForm(c *gin.Context) (*models.Product, error) {
	name := c.PostForm("name")
	description := c.PostForm("description")
	if name == "" || description == "" {
		return nil, errors.New("name and description are required")
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price < 0 {
		return nil, errors.New("price must be a non-negative number")
	}

	categoryID, err := primitive.ObjectIDFromHex(c.PostForm("category"))
	if err != nil {
		return nil, errors.New("Invalid Category")
	}

	countInStock, err := strconv.Atoi(c.PostForm("countInStock"))
	if err != nil || countInStock < 0 || countInStock > maxCountInStock {
		return nil, errors.New("countInStock must be an integer between 0 and 255")
	}

	rating, _ := strconv.ParseFloat(c.PostForm("rating"), 64)
	numReviews, _ := strconv.Atoi(c.PostForm("numReviews"))
	isFeatured, _ := strconv.ParseBool(c.PostForm("isFeatured"))

	return &models.Product{
		Name:            name,
		Description:     description,
		RichDescription: c.PostForm("richDescription"),
		Brand:           c.PostForm("brand"),
		Price:           price,
		CategoryID:      categoryID,
		CountInStock:    countInStock,
		Rating:          rating,
		NumReviews:      numReviews,
		IsFeatured:      isFeatured,
	}, nil
}

// saveUpload stores the image on disk and returns its public URL built
// from the request host.
func (pc *ProductController) saveUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	ext, ok := fileTypes[file.Header.Get("Content-Type")]
	if !ok {
		return "", errInvalidImageType
	}

	base := strings.ReplaceAll(strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename)), " ", "-")
	fileName := fmt.Sprintf("%s-%d.%s", base, time.Now().UnixMilli(), ext)

	if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
		return "", err
	}
	if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, fileName)); err != nil {
		return "", err
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, c.Request.Host, uploadDir, fileName), nil
}

func (pc *ProductController) invalidateCache(id primitive.ObjectID) {
	if pc.cache == nil {
		return
	}
	go pc.cache.Del(context.Background(), allProductsCacheKey, productCachePrefix+id.Hex())
}
