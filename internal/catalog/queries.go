package catalog

// GraphQL documents for the three operations this client exposes. The
// response shapes mirror the storefront API's edge/node pagination.

const productByHandleQuery = `query ProductByHandle($handle: String!) {
  productByHandle(handle: $handle) {
    handle
    title
    description
    tags
    updatedAt
    priceRange {
      minVariantPrice {
        amount
        currencyCode
      }
    }
    images(first: 10) {
      edges {
        node {
          url
          altText
        }
      }
    }
    variants(first: 10) {
      edges {
        node {
          id
          price
        }
      }
    }
  }
}`

const productListQuery = `query ProductList($first: Int!) {
  products(first: $first) {
    edges {
      node {
        handle
        title
        priceRange {
          minVariantPrice {
            amount
            currencyCode
          }
        }
        images(first: 1) {
          edges {
            node {
              url
              altText
            }
          }
        }
      }
    }
  }
}`

const checkoutCreateMutation = `mutation CheckoutCreate($variantId: ID!) {
  checkoutCreate(input: {lineItems: [{variantId: $variantId, quantity: 1}]}) {
    checkout {
      id
      webUrl
    }
    checkoutUserErrors {
      code
      field
      message
    }
  }
}`
